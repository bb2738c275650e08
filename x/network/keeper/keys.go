package keeper

import (
	"encoding/binary"

	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/cosmos/cosmos-sdk/types/address"
)

var (
	// ParamsKey is the key for module parameters
	ParamsKey = []byte{0x01}

	// NextSubnetIDKey is the key for the next subnet ID counter
	NextSubnetIDKey = []byte{0x02}

	// SubnetPrefix stores subnets by ID
	SubnetPrefix = []byte{0x03}

	// SubnetPathPrefix indexes subnet IDs by path
	SubnetPathPrefix = []byte{0x04}

	// SubnetNodePrefix stores nodes by (subnet, account)
	SubnetNodePrefix = []byte{0x05}

	// SubnetPeerIDPrefix indexes node accounts by (subnet, peer id)
	SubnetPeerIDPrefix = []byte{0x06}

	// AccountSubnetStakePrefix stores direct stake by (account, subnet)
	AccountSubnetStakePrefix = []byte{0x07}

	// TotalAccountStakePrefix stores the direct stake total per account
	TotalAccountStakePrefix = []byte{0x08}

	// TotalSubnetStakePrefix stores the direct stake total per subnet
	TotalSubnetStakePrefix = []byte{0x09}

	// TotalStakeKey stores the network-wide direct stake total
	TotalStakeKey = []byte{0x0A}

	// SubnetAccountPrefix is the staker membership set by (subnet, account)
	SubnetAccountPrefix = []byte{0x0B}

	// StakeUpdateBlockPrefix stores each account's last stake-changing block
	StakeUpdateBlockPrefix = []byte{0x0C}

	// DelegateSharesPrefix stores delegate shares by (subnet, account)
	DelegateSharesPrefix = []byte{0x0D}

	// TotalSubnetDelegateSharesPrefix stores the share total of each delegate pool
	TotalSubnetDelegateSharesPrefix = []byte{0x0E}

	// TotalSubnetDelegateBalancePrefix stores the balance backing each delegate pool
	TotalSubnetDelegateBalancePrefix = []byte{0x0F}

	// TotalDelegateStakeKey stores the network-wide delegate balance
	TotalDelegateStakeKey = []byte{0x10}

	// SubmissionPrefix stores rewards submissions by (subnet, epoch)
	SubmissionPrefix = []byte{0x11}

	// AccountantReportPrefix stores accountant reports by (subnet, epoch, accountant)
	AccountantReportPrefix = []byte{0x12}

	// ProposalPrefix stores proposals by (subnet, id)
	ProposalPrefix = []byte{0x13}

	// NextProposalIDPrefix stores the next proposal id per subnet
	NextProposalIDPrefix = []byte{0x14}

	// ActiveProposalPrefix indexes open proposals by (subnet, plaintiff, defendant)
	ActiveProposalPrefix = []byte{0x15}

	// AccountPenaltyPrefix stores penalty counters per account
	AccountPenaltyPrefix = []byte{0x16}

	// SubnetPenaltyPrefix stores penalty counters per subnet
	SubnetPenaltyPrefix = []byte{0x17}

	// SubnetValidatorPrefix stores the elected validator by (epoch, subnet)
	SubnetValidatorPrefix = []byte{0x18}

	// SubnetAccountantsPrefix is the elected accountant set by (epoch, subnet, account)
	SubnetAccountantsPrefix = []byte{0x19}

	// SubnetsInConsensusPrefix is the per-epoch set of subnets awaiting rewards
	SubnetsInConsensusPrefix = []byte{0x1A}
)

func subnetBytes(subnetID uint32) []byte {
	bz := make([]byte, 4)
	binary.BigEndian.PutUint32(bz, subnetID)
	return bz
}

func epochBytes(epoch uint64) []byte {
	return sdk.Uint64ToBigEndian(epoch)
}

func concat(parts ...[]byte) []byte {
	n := 0
	for _, p := range parts {
		n += len(p)
	}
	out := make([]byte, 0, n)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// GetSubnetKey returns the store key for a subnet
func GetSubnetKey(subnetID uint32) []byte {
	return concat(SubnetPrefix, subnetBytes(subnetID))
}

// GetSubnetPathKey returns the path index key for a subnet
func GetSubnetPathKey(path string) []byte {
	return concat(SubnetPathPrefix, []byte(path))
}

// GetSubnetNodeKey returns the store key for a subnet node
func GetSubnetNodeKey(subnetID uint32, account sdk.AccAddress) []byte {
	return concat(SubnetNodePrefix, subnetBytes(subnetID), address.MustLengthPrefix(account))
}

// GetSubnetNodesPrefix returns the prefix covering every node of a subnet
func GetSubnetNodesPrefix(subnetID uint32) []byte {
	return concat(SubnetNodePrefix, subnetBytes(subnetID))
}

// GetSubnetPeerIDKey returns the peer id index key
func GetSubnetPeerIDKey(subnetID uint32, peerID string) []byte {
	return concat(SubnetPeerIDPrefix, subnetBytes(subnetID), []byte(peerID))
}

// GetAccountSubnetStakeKey returns the direct stake key for (account, subnet)
func GetAccountSubnetStakeKey(account sdk.AccAddress, subnetID uint32) []byte {
	return concat(AccountSubnetStakePrefix, address.MustLengthPrefix(account), subnetBytes(subnetID))
}

// GetTotalAccountStakeKey returns the per-account stake total key
func GetTotalAccountStakeKey(account sdk.AccAddress) []byte {
	return concat(TotalAccountStakePrefix, address.MustLengthPrefix(account))
}

// GetTotalSubnetStakeKey returns the per-subnet stake total key
func GetTotalSubnetStakeKey(subnetID uint32) []byte {
	return concat(TotalSubnetStakePrefix, subnetBytes(subnetID))
}

// GetSubnetAccountKey returns the staker membership key
func GetSubnetAccountKey(subnetID uint32, account sdk.AccAddress) []byte {
	return concat(SubnetAccountPrefix, subnetBytes(subnetID), address.MustLengthPrefix(account))
}

// GetSubnetAccountsPrefix returns the prefix covering every staker of a subnet
func GetSubnetAccountsPrefix(subnetID uint32) []byte {
	return concat(SubnetAccountPrefix, subnetBytes(subnetID))
}

// GetStakeUpdateBlockKey returns the rate limit key for an account
func GetStakeUpdateBlockKey(account sdk.AccAddress) []byte {
	return concat(StakeUpdateBlockPrefix, address.MustLengthPrefix(account))
}

// GetDelegateSharesKey returns the delegate share key for (subnet, account)
func GetDelegateSharesKey(subnetID uint32, account sdk.AccAddress) []byte {
	return concat(DelegateSharesPrefix, subnetBytes(subnetID), address.MustLengthPrefix(account))
}

// GetTotalSubnetDelegateSharesKey returns the pool share total key
func GetTotalSubnetDelegateSharesKey(subnetID uint32) []byte {
	return concat(TotalSubnetDelegateSharesPrefix, subnetBytes(subnetID))
}

// GetTotalSubnetDelegateBalanceKey returns the pool balance key
func GetTotalSubnetDelegateBalanceKey(subnetID uint32) []byte {
	return concat(TotalSubnetDelegateBalancePrefix, subnetBytes(subnetID))
}

// GetSubmissionKey returns the rewards submission key
func GetSubmissionKey(subnetID uint32, epoch uint64) []byte {
	return concat(SubmissionPrefix, subnetBytes(subnetID), epochBytes(epoch))
}

// GetSubnetSubmissionsPrefix returns the prefix covering every submission of a subnet
func GetSubnetSubmissionsPrefix(subnetID uint32) []byte {
	return concat(SubmissionPrefix, subnetBytes(subnetID))
}

// GetAccountantReportKey returns the accountant report key
func GetAccountantReportKey(subnetID uint32, epoch uint64, accountant sdk.AccAddress) []byte {
	return concat(AccountantReportPrefix, subnetBytes(subnetID), epochBytes(epoch), address.MustLengthPrefix(accountant))
}

// GetProposalKey returns the proposal key
func GetProposalKey(subnetID uint32, proposalID uint64) []byte {
	return concat(ProposalPrefix, subnetBytes(subnetID), sdk.Uint64ToBigEndian(proposalID))
}

// GetNextProposalIDKey returns the proposal counter key of a subnet
func GetNextProposalIDKey(subnetID uint32) []byte {
	return concat(NextProposalIDPrefix, subnetBytes(subnetID))
}

// GetActiveProposalKey returns the open-proposal index key
func GetActiveProposalKey(subnetID uint32, plaintiff, defendant sdk.AccAddress) []byte {
	return concat(ActiveProposalPrefix, subnetBytes(subnetID), address.MustLengthPrefix(plaintiff), address.MustLengthPrefix(defendant))
}

// GetAccountPenaltyKey returns the account penalty counter key
func GetAccountPenaltyKey(account sdk.AccAddress) []byte {
	return concat(AccountPenaltyPrefix, address.MustLengthPrefix(account))
}

// GetSubnetPenaltyKey returns the subnet penalty counter key
func GetSubnetPenaltyKey(subnetID uint32) []byte {
	return concat(SubnetPenaltyPrefix, subnetBytes(subnetID))
}

// GetSubnetValidatorKey returns the elected validator key
func GetSubnetValidatorKey(epoch uint64, subnetID uint32) []byte {
	return concat(SubnetValidatorPrefix, epochBytes(epoch), subnetBytes(subnetID))
}

// GetSubnetAccountantKey returns the elected accountant key
func GetSubnetAccountantKey(epoch uint64, subnetID uint32, account sdk.AccAddress) []byte {
	return concat(SubnetAccountantsPrefix, epochBytes(epoch), subnetBytes(subnetID), address.MustLengthPrefix(account))
}

// GetSubnetAccountantsPrefix returns the prefix covering an epoch's accountants of a subnet
func GetSubnetAccountantsPrefix(epoch uint64, subnetID uint32) []byte {
	return concat(SubnetAccountantsPrefix, epochBytes(epoch), subnetBytes(subnetID))
}

// GetSubnetInConsensusKey returns the in-consensus membership key
func GetSubnetInConsensusKey(epoch uint64, subnetID uint32) []byte {
	return concat(SubnetsInConsensusPrefix, epochBytes(epoch), subnetBytes(subnetID))
}

// GetSubnetsInConsensusPrefix returns the prefix covering an epoch's in-consensus set
func GetSubnetsInConsensusPrefix(epoch uint64) []byte {
	return concat(SubnetsInConsensusPrefix, epochBytes(epoch))
}

func parseSubnetID(bz []byte) uint32 {
	return binary.BigEndian.Uint32(bz[:4])
}

// parseLengthPrefixed splits a length-prefixed address off the front of bz.
func parseLengthPrefixed(bz []byte) (sdk.AccAddress, []byte) {
	if len(bz) == 0 {
		return nil, nil
	}
	n := int(bz[0])
	if len(bz) < 1+n {
		return nil, nil
	}
	return sdk.AccAddress(bz[1 : 1+n]), bz[1+n:]
}
