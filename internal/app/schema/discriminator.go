package schema

import (
	bin "github.com/gagliardetto/binary"
)

const DiscriminatorSize = 8

const (
	NamespaceAccount = "account"
	NamespaceGlobal  = "global"
)

// Discriminator is the first 8 bytes of sha256("<namespace>:<name>"), the tag the
// program prefixes to every stored account and expects on every instruction.
func Discriminator(namespace, name string) [DiscriminatorSize]byte {
	return [DiscriminatorSize]byte(bin.SighashTypeID(namespace, name))
}

func AccountDiscriminator(name string) [DiscriminatorSize]byte {
	return Discriminator(NamespaceAccount, name)
}

func RequestDiscriminator(name string) [DiscriminatorSize]byte {
	return Discriminator(NamespaceGlobal, name)
}
