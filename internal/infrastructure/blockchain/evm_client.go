package blockchain

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
)

var (
	dialEVMClient    = ethclient.Dial
	getClientChainID = func(client *ethclient.Client, ctx context.Context) (*big.Int, error) {
		return client.ChainID(ctx)
	}
)

// EVMClient provides EVM blockchain interaction
type EVMClient struct {
	client  *ethclient.Client
	chainID *big.Int
	rpcURL  string
	// test hooks allow deterministic unit tests without network sockets.
	testReceipt     func(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	testBlockNumber func(ctx context.Context) (uint64, error)
}

// NewEVMClient creates a new EVM client
func NewEVMClient(rpcURL string) (*EVMClient, error) {
	client, err := dialEVMClient(rpcURL)
	if err != nil {
		return nil, err
	}

	chainID, err := getClientChainID(client, context.Background())
	if err != nil {
		return nil, err
	}

	return &EVMClient{
		client:  client,
		chainID: chainID,
		rpcURL:  rpcURL,
	}, nil
}

// NewEVMClientWithHooks creates an EVM client backed by injected receipt and
// block-number implementations. Intended for unit tests where RPC sockets are
// unavailable.
func NewEVMClientWithHooks(
	chainID *big.Int,
	receiptFn func(ctx context.Context, txHash common.Hash) (*types.Receipt, error),
	blockNumberFn func(ctx context.Context) (uint64, error),
) *EVMClient {
	if chainID == nil {
		chainID = big.NewInt(1)
	}
	return &EVMClient{
		chainID:         chainID,
		testReceipt:     receiptFn,
		testBlockNumber: blockNumberFn,
	}
}

// ChainID returns the chain ID
func (c *EVMClient) ChainID() *big.Int {
	return c.chainID
}

// GetTransactionReceipt gets a transaction receipt by hash
func (c *EVMClient) GetTransactionReceipt(ctx context.Context, txHash string) (*types.Receipt, error) {
	hash := common.HexToHash(txHash)
	if c.testReceipt != nil {
		return c.testReceipt(ctx, hash)
	}
	return c.client.TransactionReceipt(ctx, hash)
}

// GetBlockNumber gets the latest block number
func (c *EVMClient) GetBlockNumber(ctx context.Context) (uint64, error) {
	if c.testBlockNumber != nil {
		return c.testBlockNumber(ctx)
	}
	return c.client.BlockNumber(ctx)
}

// GetBalance gets the native token balance of an address
func (c *EVMClient) GetBalance(ctx context.Context, address string) (*big.Int, error) {
	addr := common.HexToAddress(address)
	return c.client.BalanceAt(ctx, addr, nil)
}

// Close closes the client connection
func (c *EVMClient) Close() {
	if c.client != nil {
		c.client.Close()
	}
}
