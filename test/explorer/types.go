package explorer

import (
	"fmt"
	"strconv"
	"strings"
)

// BlockDate is a position in the chain: an epoch and a slot within it.
type BlockDate struct {
	Epoch uint32
	Slot  uint32
}

func (d BlockDate) String() string {
	return fmt.Sprintf("%d.%d", d.Epoch, d.Slot)
}

// Next returns the date of the following slot, given the number of slots per
// epoch.
func (d BlockDate) Next(slotsPerEpoch uint32) BlockDate {
	if slotsPerEpoch == 0 || d.Slot+1 < slotsPerEpoch {
		return BlockDate{Epoch: d.Epoch, Slot: d.Slot + 1}
	}
	return BlockDate{Epoch: d.Epoch + 1}
}

// ParseBlockDate parses the "epoch.slot" form.
func ParseBlockDate(s string) (BlockDate, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 2 {
		return BlockDate{}, fmt.Errorf("invalid block date %q: want epoch.slot", s)
	}
	epoch, err := strconv.ParseUint(parts[0], 10, 32)
	if err != nil {
		return BlockDate{}, fmt.Errorf("invalid epoch in block date %q: %w", s, err)
	}
	slot, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil {
		return BlockDate{}, fmt.Errorf("invalid slot in block date %q: %w", s, err)
	}
	return BlockDate{Epoch: uint32(epoch), Slot: uint32(slot)}, nil
}

// Date is the block date as the explorer encodes it.
type Date struct {
	Epoch EpochRef `json:"epoch"`
	Slot  string   `json:"slot"`
}

// BlockDate converts d into a BlockDate.
func (d Date) BlockDate() (BlockDate, error) {
	return ParseBlockDate(d.Epoch.ID + "." + d.Slot)
}

type EpochRef struct {
	ID string `json:"id"`
}

type BlockRef struct {
	ID string `json:"id"`
}

type PoolRef struct {
	ID string `json:"id"`
}

type AddressRef struct {
	ID string `json:"id"`
}

type Block struct {
	ID          string `json:"id"`
	ChainLength string `json:"chainLength"`
	Date        Date   `json:"date"`
}

type BlockEdge struct {
	Node Block `json:"node"`
}

type BlockConnection struct {
	Edges      []BlockEdge `json:"edges"`
	TotalCount int         `json:"totalCount"`
}

type BlockRefEdge struct {
	Node BlockRef `json:"node"`
}

type BlockRefConnection struct {
	Edges      []BlockRefEdge `json:"edges"`
	TotalCount int            `json:"totalCount"`
}

// IDs returns the block ids in the order the explorer returned them.
func (c BlockRefConnection) IDs() []string {
	ids := make([]string, len(c.Edges))
	for i, e := range c.Edges {
		ids[i] = e.Node.ID
	}
	return ids
}

type PoolEdge struct {
	Node PoolRef `json:"node"`
}

type PoolConnection struct {
	Edges      []PoolEdge `json:"edges"`
	TotalCount int        `json:"totalCount"`
}

// IDs returns the pool ids in the order the explorer returned them.
func (c PoolConnection) IDs() []string {
	ids := make([]string, len(c.Edges))
	for i, e := range c.Edges {
		ids[i] = e.Node.ID
	}
	return ids
}

//-----------------------------------------------------------------------------
// per query data members

type AddressData struct {
	Address struct {
		ID         string   `json:"id"`
		Delegation *PoolRef `json:"delegation"`
	} `json:"address"`
}

type AllStakePoolsData struct {
	AllStakePools PoolConnection `json:"allStakePools"`
}

type AllBlocksData struct {
	AllBlocks BlockConnection `json:"allBlocks"`
}

type BlocksByChainLengthData struct {
	BlocksByChainLength []Block `json:"blocksByChainLength"`
}

type EpochData struct {
	Epoch struct {
		ID          string             `json:"id"`
		FirstBlock  *BlockRef          `json:"firstBlock"`
		LastBlock   *BlockRef          `json:"lastBlock"`
		TotalBlocks int                `json:"totalBlocks"`
		Blocks      BlockRefConnection `json:"blocks"`
	} `json:"epoch"`
}

type StakePoolData struct {
	StakePool struct {
		ID     string             `json:"id"`
		Blocks BlockRefConnection `json:"blocks"`
	} `json:"stakePool"`
}

type Fees struct {
	Constant    string `json:"constant"`
	Coefficient string `json:"coefficient"`
	Certificate string `json:"certificate"`
}

type SettingsData struct {
	Settings struct {
		Fees                Fees   `json:"fees"`
		EpochStabilityDepth string `json:"epochStabilityDepth"`
	} `json:"settings"`
}

type Proposal struct {
	ProposalID string `json:"proposalId"`
}

type VotePlan struct {
	ID           string     `json:"id"`
	VoteStart    Date       `json:"voteStart"`
	VoteEnd      Date       `json:"voteEnd"`
	CommitteeEnd Date       `json:"committeeEnd"`
	PayloadType  string     `json:"payloadType"`
	Proposals    []Proposal `json:"proposals"`
}

type AllVotePlansData struct {
	AllVotePlans struct {
		Edges []struct {
			Node VotePlan `json:"node"`
		} `json:"edges"`
		TotalCount int `json:"totalCount"`
	} `json:"allVotePlans"`
}

type TransactionIO struct {
	Amount  string     `json:"amount"`
	Address AddressRef `json:"address"`
}

type TransactionData struct {
	Transaction struct {
		ID      string          `json:"id"`
		Blocks  []Block         `json:"blocks"`
		Inputs  []TransactionIO `json:"inputs"`
		Outputs []TransactionIO `json:"outputs"`
	} `json:"transaction"`
}

type LastBlockData struct {
	Status struct {
		LatestBlock *Block `json:"latestBlock"`
	} `json:"status"`
}
