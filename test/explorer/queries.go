package explorer

import (
	"context"
	"fmt"
	"strconv"
)

type AddressVars struct {
	Bech32 string `json:"bech32"`
}

type FirstVars struct {
	First int `json:"first"`
}

type LastVars struct {
	Last int `json:"last"`
}

type ChainLengthVars struct {
	Length string `json:"length"`
}

type EpochVars struct {
	ID          string `json:"id"`
	BlocksLimit int    `json:"blocksLimit"`
}

type StakePoolVars struct {
	ID    string `json:"id"`
	First int    `json:"first"`
}

type TransactionVars struct {
	ID string `json:"id"`
}

// NoVars is the variables type of queries without parameters.
type NoVars struct{}

var (
	AddressQuery = Query[AddressVars, AddressData]{
		Name: "Address",
		Document: `query Address($bech32: String!) {
  address(bech32: $bech32) {
    id
    delegation { id }
  }
}`,
	}

	AllStakePoolsQuery = Query[FirstVars, AllStakePoolsData]{
		Name: "AllStakePools",
		Document: `query AllStakePools($first: Int!) {
  allStakePools(first: $first) {
    edges { node { id } }
    totalCount
  }
}`,
	}

	AllBlocksQuery = Query[LastVars, AllBlocksData]{
		Name: "AllBlocks",
		Document: `query AllBlocks($last: Int!) {
  allBlocks(last: $last) {
    edges { node { id chainLength date { epoch { id } slot } } }
    totalCount
  }
}`,
	}

	BlocksByChainLengthQuery = Query[ChainLengthVars, BlocksByChainLengthData]{
		Name: "BlocksByChainLength",
		Document: `query BlocksByChainLength($length: ChainLength!) {
  blocksByChainLength(length: $length) {
    id
    chainLength
    date { epoch { id } slot }
  }
}`,
	}

	EpochQuery = Query[EpochVars, EpochData]{
		Name: "Epoch",
		Document: `query Epoch($id: EpochNumber!, $blocksLimit: Int!) {
  epoch(id: $id) {
    id
    firstBlock { id }
    lastBlock { id }
    totalBlocks
    blocks(first: $blocksLimit) {
      edges { node { id } }
      totalCount
    }
  }
}`,
	}

	StakePoolQuery = Query[StakePoolVars, StakePoolData]{
		Name: "StakePool",
		Document: `query StakePool($id: PoolId!, $first: Int!) {
  stakePool(id: $id) {
    id
    blocks(first: $first) {
      edges { node { id } }
      totalCount
    }
  }
}`,
	}

	SettingsQuery = Query[NoVars, SettingsData]{
		Name: "Settings",
		Document: `query Settings {
  settings {
    fees { constant coefficient certificate }
    epochStabilityDepth
  }
}`,
	}

	AllVotePlansQuery = Query[FirstVars, AllVotePlansData]{
		Name: "AllVotePlans",
		Document: `query AllVotePlans($first: Int!) {
  allVotePlans(first: $first) {
    edges {
      node {
        id
        voteStart { epoch { id } slot }
        voteEnd { epoch { id } slot }
        committeeEnd { epoch { id } slot }
        payloadType
        proposals { proposalId }
      }
    }
    totalCount
  }
}`,
	}

	TransactionByIDQuery = Query[TransactionVars, TransactionData]{
		Name: "TransactionById",
		Document: `query TransactionById($id: String!) {
  transaction(id: $id) {
    id
    blocks { id chainLength date { epoch { id } slot } }
    inputs { amount address { id } }
    outputs { amount address { id } }
  }
}`,
	}

	LastBlockQuery = Query[NoVars, LastBlockData]{
		Name: "LastBlock",
		Document: `query LastBlock {
  status {
    latestBlock {
      id
      chainLength
      date { epoch { id } slot }
    }
  }
}`,
	}
)

var catalog = []Document{
	AddressQuery,
	AllStakePoolsQuery,
	AllBlocksQuery,
	BlocksByChainLengthQuery,
	EpochQuery,
	StakePoolQuery,
	SettingsQuery,
	AllVotePlansQuery,
	TransactionByIDQuery,
	LastBlockQuery,
}

// Address returns the address record of a bech32 encoded address.
func (e *Explorer) Address(ctx context.Context, bech32 string) (*Response[AddressData], error) {
	return Execute(ctx, e, AddressQuery, AddressVars{Bech32: bech32})
}

// StakePools returns up to limit stake pools.
func (e *Explorer) StakePools(ctx context.Context, limit int) (*Response[AllStakePoolsData], error) {
	return Execute(ctx, e, AllStakePoolsQuery, FirstVars{First: limit})
}

// Blocks returns the last limit blocks.
func (e *Explorer) Blocks(ctx context.Context, limit int) (*Response[AllBlocksData], error) {
	return Execute(ctx, e, AllBlocksQuery, LastVars{Last: limit})
}

// BlocksAtChainLength returns the blocks at the given chain length.
func (e *Explorer) BlocksAtChainLength(ctx context.Context, length uint32) (*Response[BlocksByChainLengthData], error) {
	return Execute(ctx, e, BlocksByChainLengthQuery, ChainLengthVars{Length: strconv.FormatUint(uint64(length), 10)})
}

// Epoch returns an epoch with at most limit of its blocks.
func (e *Explorer) Epoch(ctx context.Context, epoch uint32, limit int) (*Response[EpochData], error) {
	return Execute(ctx, e, EpochQuery, EpochVars{
		ID:          strconv.FormatUint(uint64(epoch), 10),
		BlocksLimit: limit,
	})
}

// StakePool returns a pool with at most limit of the blocks it produced.
func (e *Explorer) StakePool(ctx context.Context, poolID string, limit int) (*Response[StakePoolData], error) {
	return Execute(ctx, e, StakePoolQuery, StakePoolVars{ID: poolID, First: limit})
}

// Settings returns the fee settings of the chain.
func (e *Explorer) Settings(ctx context.Context) (*Response[SettingsData], error) {
	return Execute(ctx, e, SettingsQuery, NoVars{})
}

// VotePlans returns up to limit vote plans.
func (e *Explorer) VotePlans(ctx context.Context, limit int) (*Response[AllVotePlansData], error) {
	return Execute(ctx, e, AllVotePlansQuery, FirstVars{First: limit})
}

// Transaction returns a transaction by its hash.
func (e *Explorer) Transaction(ctx context.Context, hash string) (*Response[TransactionData], error) {
	return Execute(ctx, e, TransactionByIDQuery, TransactionVars{ID: hash})
}

// LastBlockResponse is the response of LastBlock.
type LastBlockResponse struct {
	*Response[LastBlockData]
}

// Block returns the latest block, or an error if the explorer sent none.
func (r *LastBlockResponse) Block() (*Block, error) {
	if err := r.Err(); err != nil {
		return nil, err
	}
	if r.Data == nil || r.Data.Status.LatestBlock == nil {
		return nil, fmt.Errorf("no latest block in response")
	}
	return r.Data.Status.LatestBlock, nil
}

// BlockDate returns the date of the latest block.
func (r *LastBlockResponse) BlockDate() (BlockDate, error) {
	b, err := r.Block()
	if err != nil {
		return BlockDate{}, err
	}
	return b.Date.BlockDate()
}

// LastBlock returns the tip of the chain as seen by the explorer.
func (e *Explorer) LastBlock(ctx context.Context) (*LastBlockResponse, error) {
	resp, err := Execute(ctx, e, LastBlockQuery, NoVars{})
	if err != nil {
		return nil, err
	}
	return &LastBlockResponse{resp}, nil
}
