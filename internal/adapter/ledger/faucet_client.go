package ledger

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"
	"time"

	"quizfaucet/internal/config"
	"quizfaucet/internal/domain"
	"quizfaucet/internal/logger"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"
)

// faucetABI covers the faucet contract surface the service needs: the
// advisory reads and the admin-signed reward write. The contract itself
// owns the daily-limit bookkeeping and the score-to-reward formula.
const faucetABI = `[
	{"type":"function","name":"canClaim","stateMutability":"view","inputs":[{"name":"user","type":"address"}],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"getRemainingClaims","stateMutability":"view","inputs":[{"name":"user","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"userClaims","stateMutability":"view","inputs":[{"name":"","type":"address"}],"outputs":[{"name":"claimsToday","type":"uint256"},{"name":"lastClaimTimestamp","type":"uint256"}]},
	{"type":"function","name":"claimReward","stateMutability":"nonpayable","inputs":[{"name":"user","type":"address"},{"name":"scorePercentage","type":"uint256"}],"outputs":[]}
]`

// FaucetClient implements domain.Ledger against the on-chain faucet
// contract over JSON-RPC.
type FaucetClient struct {
	eth           *ethclient.Client
	contract      *bind.BoundContract
	adminKey      *ecdsa.PrivateKey
	chainID       *big.Int
	callTimeout   time.Duration
	submitTimeout time.Duration
}

var _ domain.Ledger = (*FaucetClient)(nil)

// NewFaucetClient dials the RPC endpoint and binds the faucet contract.
func NewFaucetClient(cfg config.LedgerConfig) (*FaucetClient, error) {
	if cfg.RPCURL == "" {
		return nil, fmt.Errorf("ledger rpc_url is required")
	}
	if !common.IsHexAddress(cfg.ContractAddress) {
		return nil, fmt.Errorf("invalid faucet contract address: %q", cfg.ContractAddress)
	}

	eth, err := ethclient.Dial(cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial ledger rpc: %w", err)
	}

	parsed, err := abi.JSON(strings.NewReader(faucetABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse faucet ABI: %w", err)
	}

	adminKey, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.AdminPrivateKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid admin private key: %w", err)
	}

	return &FaucetClient{
		eth:           eth,
		contract:      bind.NewBoundContract(common.HexToAddress(cfg.ContractAddress), parsed, eth, eth, eth),
		adminKey:      adminKey,
		chainID:       big.NewInt(cfg.ChainID),
		callTimeout:   cfg.CallTimeout,
		submitTimeout: cfg.SubmitTimeout,
	}, nil
}

// Status reads the per-identity claim accounting. The snapshot is advisory
// and may be stale by the time a write is issued.
func (c *FaucetClient) Status(ctx context.Context, address string) (*domain.ClaimStatus, error) {
	cctx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	user := common.HexToAddress(address)
	opts := &bind.CallOpts{Context: cctx}

	var out []interface{}
	if err := c.contract.Call(opts, &out, "canClaim", user); err != nil {
		return nil, fmt.Errorf("canClaim call failed: %w", err)
	}
	canClaim, ok := out[0].(bool)
	if !ok {
		return nil, fmt.Errorf("canClaim returned unexpected type %T", out[0])
	}

	out = out[:0]
	if err := c.contract.Call(opts, &out, "getRemainingClaims", user); err != nil {
		return nil, fmt.Errorf("getRemainingClaims call failed: %w", err)
	}
	remaining, ok := out[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("getRemainingClaims returned unexpected type %T", out[0])
	}

	out = out[:0]
	if err := c.contract.Call(opts, &out, "userClaims", user); err != nil {
		return nil, fmt.Errorf("userClaims call failed: %w", err)
	}
	if len(out) != 2 {
		return nil, fmt.Errorf("userClaims returned %d values, expected 2", len(out))
	}
	lastClaimTS, ok := out[1].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("userClaims timestamp has unexpected type %T", out[1])
	}

	// A zero timestamp means the address has never claimed.
	var lastClaim time.Time
	if lastClaimTS.Sign() > 0 {
		lastClaim = time.Unix(lastClaimTS.Int64(), 0).UTC()
	}

	return &domain.ClaimStatus{
		RemainingClaims: int(remaining.Int64()),
		LastClaimTime:   lastClaim,
		CanClaim:        canClaim,
	}, nil
}

// SubmitClaim sends a single claimReward transaction and waits for it to be
// mined, bounded by the submit timeout. The transaction cannot be
// un-submitted once sent: a deadline expiry here means the outcome is
// unknown, not that the reward was withheld.
func (c *FaucetClient) SubmitClaim(ctx context.Context, address string, scorePercentage int) (string, error) {
	cctx, cancel := context.WithTimeout(ctx, c.submitTimeout)
	defer cancel()

	opts, err := bind.NewKeyedTransactorWithChainID(c.adminKey, c.chainID)
	if err != nil {
		return "", fmt.Errorf("failed to create transactor: %w", err)
	}
	opts.Context = cctx

	tx, err := c.contract.Transact(opts, "claimReward",
		common.HexToAddress(address), big.NewInt(int64(scorePercentage)))
	if err != nil {
		return "", fmt.Errorf("claimReward transaction failed: %w", err)
	}

	logger.Get().Info("Claim transaction submitted, waiting for confirmation",
		zap.String("tx_hash", tx.Hash().Hex()),
		zap.String("address", address),
	)

	receipt, err := bind.WaitMined(cctx, c.eth, tx)
	if err != nil {
		return "", fmt.Errorf("waiting for claim transaction %s: %w", tx.Hash().Hex(), err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return "", fmt.Errorf("claim transaction %s reverted", tx.Hash().Hex())
	}

	return tx.Hash().Hex(), nil
}

// Close releases the underlying RPC connection.
func (c *FaucetClient) Close() {
	c.eth.Close()
}
