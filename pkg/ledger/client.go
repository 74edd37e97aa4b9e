// Package ledger submits and queries evidence transactions against two
// independently configured Hyperledger Fabric chains.
//
// Connections are not cached: every Submit or Evaluate dials the chain's
// gateway peer, loads that chain's identity and signing key, invokes, and
// tears the transport down before returning. That costs full connection setup
// per call but bounds resource growth and keeps the two chains fully
// isolated.
package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/hyperledger/fabric-gateway/pkg/client"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
)

// Deadline envelope per operation stage. Writes wait for cross-peer
// endorsement and commitment, so they get more headroom than reads.
const (
	evaluateTimeout     = 30 * time.Second
	endorseTimeout      = 60 * time.Second
	submitTimeout       = 60 * time.Second
	commitStatusTimeout = 2 * time.Minute
)

// grpcConn is the transport surface a session owns: invocable and closable.
type grpcConn interface {
	grpc.ClientConnInterface
	Close() error
}

// GatewayClient talks to the evidence chaincode on either chain. It holds
// only configuration and is safe for concurrent use.
type GatewayClient struct {
	cfg    Config
	logger *slog.Logger

	// newConn opens the transport for one session. Overridden in tests to
	// observe teardown.
	newConn func(ChainConfig) (grpcConn, error)
}

// NewGatewayClient creates a client for the two configured chains.
func NewGatewayClient(cfg Config, logger *slog.Logger) *GatewayClient {
	if logger == nil {
		logger = slog.Default()
	}
	g := &GatewayClient{cfg: cfg, logger: logger}
	g.newConn = func(chainCfg ChainConfig) (grpcConn, error) {
		return g.dial(chainCfg)
	}
	return g
}

// session is the per-call bundle of scoped resources. close releases them on
// every exit path, including failed invokes.
type session struct {
	conn     grpcConn
	gateway  *client.Gateway
	contract *client.Contract
}

func (s *session) close() {
	s.gateway.Close()
	_ = s.conn.Close()
}

// dial opens the gRPC transport to the chain's gateway peer, with TLS when
// the chain requires it.
func (g *GatewayClient) dial(cfg ChainConfig) (*grpc.ClientConn, error) {
	if !cfg.TLSEnabled {
		return grpc.NewClient(cfg.GatewayPeer, grpc.WithTransportCredentials(insecure.NewCredentials()))
	}

	// The peer certificate is issued for the peer hostname, not the
	// address the service dials, so override the expected server name.
	serverName := cfg.GatewayPeer
	if host, _, err := net.SplitHostPort(cfg.GatewayPeer); err == nil {
		serverName = host
	}
	creds, err := credentials.NewClientTLSFromFile(cfg.TLSCACert, serverName)
	if err != nil {
		return nil, fmt.Errorf("load TLS CA certificate: %w", err)
	}
	return grpc.NewClient(cfg.GatewayPeer, grpc.WithTransportCredentials(creds))
}

// open establishes the full connect -> authenticate chain for one call.
func (g *GatewayClient) open(chain Chain) (*session, error) {
	cfg, err := g.cfg.Select(chain)
	if err != nil {
		return nil, err
	}

	conn, err := g.newConn(cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %v", ErrUnreachable, cfg.GatewayPeer, err)
	}

	id, err := newIdentity(cfg)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	sign, err := newSign(cfg)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	gateway, err := client.Connect(id,
		client.WithSign(sign),
		client.WithClientConnection(conn),
		client.WithEvaluateTimeout(evaluateTimeout),
		client.WithEndorseTimeout(endorseTimeout),
		client.WithSubmitTimeout(submitTimeout),
		client.WithCommitStatusTimeout(commitStatusTimeout),
	)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%w: connect gateway: %v", ErrUnreachable, err)
	}

	contract := gateway.GetNetwork(cfg.Channel).GetContract(cfg.Chaincode)
	return &session{conn: conn, gateway: gateway, contract: contract}, nil
}

// Submit records evidence on the selected chain via the AddEvidence
// transaction and returns the transaction id once the write is
// ledger-confirmed. The submitter travels as transient data only.
func (g *GatewayClient) Submit(ctx context.Context, chain Chain, sub Submission, by Submitter) (string, error) {
	sess, err := g.open(chain)
	if err != nil {
		return "", err
	}
	defer sess.close()

	g.logger.Info("submitting AddEvidence",
		"chain", chain,
		"evidenceId", sub.EvidenceID,
		"investigationId", sub.InvestigationID,
	)

	result, err := sess.contract.SubmitWithContext(ctx, "AddEvidence",
		client.WithArguments(
			sub.EvidenceID,
			sub.InvestigationID,
			sub.Description,
			sub.CID,
			sub.SHA256,
			string(sub.MetadataJSON),
		),
		client.WithTransient(map[string][]byte{
			"userId": []byte(by.UserID),
			"role":   []byte(by.Role),
		}),
	)
	if err != nil {
		if status.Code(err) == codes.Unavailable {
			return "", fmt.Errorf("%w: chain %s: %v", ErrUnreachable, chain, err)
		}
		return "", fmt.Errorf("%w: chain %s: %v", ErrSubmitFailed, chain, err)
	}

	txID := string(result)
	g.logger.Info("evidence recorded", "chain", chain, "evidenceId", sub.EvidenceID, "txId", txID)
	return txID, nil
}

// Evaluate reads an evidence record from the selected chain via the
// GetEvidence query. No transient data, no consensus write.
func (g *GatewayClient) Evaluate(ctx context.Context, chain Chain, evidenceID string) (*EvidenceRecord, error) {
	sess, err := g.open(chain)
	if err != nil {
		return nil, err
	}
	defer sess.close()

	result, err := sess.contract.EvaluateWithContext(ctx, "GetEvidence", client.WithArguments(evidenceID))
	if err != nil {
		switch {
		case status.Code(err) == codes.Unavailable:
			return nil, fmt.Errorf("%w: chain %s: %v", ErrUnreachable, chain, err)
		case isNotFound(err):
			return nil, fmt.Errorf("%w: %s on chain %s", ErrNotFound, evidenceID, chain)
		default:
			return nil, fmt.Errorf("%w: chain %s: %v", ErrQueryFailed, chain, err)
		}
	}

	var record EvidenceRecord
	if err := json.Unmarshal(result, &record); err != nil {
		return nil, fmt.Errorf("%w: decode record: %v", ErrQueryFailed, err)
	}
	record.Chain = chain.String()
	return &record, nil
}

// Ping reports whether the chain's gateway peer accepts TCP connections.
// Best effort, used by health reporting only.
func (g *GatewayClient) Ping(ctx context.Context, chain Chain) bool {
	cfg, err := g.cfg.Select(chain)
	if err != nil {
		return false
	}
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", cfg.GatewayPeer)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

// isNotFound matches the chaincode's missing-key errors.
func isNotFound(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "does not exist") || strings.Contains(msg, "not found")
}
