package schema

// Account kinds stored by the satch program.
const (
	RecordPlatform            = "Platform"
	RecordDriverProfile       = "DriverProfile"
	RecordLicensePlateMapping = "LicensePlateMapping"
	RecordReview              = "Review"
)

// Instructions accepted by the satch program.
const (
	RequestRegisterPlatform = "register_platform"
	RequestRegisterDriver   = "register_driver"
	RequestLeaveReview      = "leave_review"
)

// Account slot names used by the instructions above.
const (
	AccountPlatform        = "platform_account"
	AccountAuthority       = "authority"
	AccountDriver          = "driver_account"
	AccountPlateMapping    = "license_plate_mapping"
	AccountDriverAuthority = "driver_authority"
	AccountReview          = "review_account"
	AccountReviewer        = "reviewer"
	AccountSystemProgram   = "system_program"
)

const (
	MaxPlatformNameLen = 28
	MaxDriverNameLen   = 28
	MaxPlateLen        = 32
)

var satchRecords = []RecordSchema{
	{
		Name: RecordPlatform,
		Fields: []Field{
			{Name: "authority", Type: Fixed32},
			{Name: "name", Type: Text, MaxLen: MaxPlatformNameLen},
			{Name: "verified", Type: Bool},
			{Name: "driver_count", Type: U64},
		},
	},
	{
		Name: RecordDriverProfile,
		Fields: []Field{
			{Name: "authority", Type: Fixed32},
			{Name: "platform", Type: Fixed32},
			{Name: "name", Type: Text, MaxLen: MaxDriverNameLen},
			{Name: "license_plate", Type: Text, MaxLen: MaxPlateLen},
			{Name: "rating_sum", Type: U64},
			{Name: "review_count", Type: U64},
		},
	},
	{
		Name: RecordLicensePlateMapping,
		Fields: []Field{
			{Name: "license_plate", Type: Text, MaxLen: MaxPlateLen},
			{Name: "driver_pda", Type: Fixed32},
		},
	},
	{
		Name: RecordReview,
		Fields: []Field{
			{Name: "driver", Type: Fixed32},
			{Name: "reviewer", Type: Fixed32},
			{Name: "rating", Type: U8},
			{Name: "message_hash", Type: Text},
		},
	},
}

var satchRequests = []RequestSchema{
	{
		Name: RequestRegisterPlatform,
		Args: []Field{
			{Name: "name", Type: Text, MaxLen: MaxPlatformNameLen},
		},
		Accounts: []AccountMeta{
			{Name: AccountPlatform, Writable: true},
			{Name: AccountAuthority, Writable: true, Signer: true},
			{Name: AccountSystemProgram},
		},
	},
	{
		Name: RequestRegisterDriver,
		Args: []Field{
			{Name: "name", Type: Text, MaxLen: MaxDriverNameLen},
			{Name: "license_plate", Type: Text, MaxLen: MaxPlateLen},
		},
		Accounts: []AccountMeta{
			{Name: AccountDriver, Writable: true},
			{Name: AccountPlateMapping, Writable: true},
			{Name: AccountDriverAuthority, Signer: true},
			{Name: AccountPlatform, Writable: true},
			{Name: AccountAuthority, Writable: true, Signer: true},
			{Name: AccountSystemProgram},
		},
	},
	{
		Name: RequestLeaveReview,
		Args: []Field{
			{Name: "rating", Type: U8},
			{Name: "message_hash", Type: Text},
		},
		Accounts: []AccountMeta{
			{Name: AccountReview, Writable: true},
			{Name: AccountDriver, Writable: true},
			{Name: AccountReviewer, Writable: true, Signer: true},
			{Name: AccountSystemProgram},
		},
	},
}

// Satch is the registry for the deployed satch program version.
var Satch = NewRegistry(satchRecords, satchRequests)
