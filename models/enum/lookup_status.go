package enum

// LookupStatus is the code attribute returned by the DOR address rate service.
type LookupStatus int

const (
	LookupStatusAddressFound          LookupStatus = 0 // address matched, rate returned
	LookupStatusZipPlusFourFound      LookupStatus = 1 // address not matched, ZIP+4 matched, rate returned
	LookupStatusAddressNotFound       LookupStatus = 2 // neither address nor ZIP+4 matched
	LookupStatusAddressAndZipNotFound LookupStatus = 3
	LookupStatusInvalidArguments      LookupStatus = 4
	LookupStatusInternalError         LookupStatus = 5
)
