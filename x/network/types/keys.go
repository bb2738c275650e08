package types

const (
	// ModuleName defines the module name
	ModuleName = "network"

	// StoreKey defines the primary module store key
	StoreKey = ModuleName

	// RouterKey is the message route for network
	RouterKey = ModuleName

	// QuerierRoute defines the module's query routing key
	QuerierRoute = ModuleName
)
