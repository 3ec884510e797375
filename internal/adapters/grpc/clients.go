package grpc

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/ticketrail/settlement/internal/domain"
	"github.com/ticketrail/settlement/internal/ports"
)

// TicketRegistryClient queries the ticketing platform's registry service for
// anchoring status and ticket metadata.
type TicketRegistryClient struct {
	conn *grpc.ClientConn
}

func NewTicketRegistryClient(endpoint string) (*TicketRegistryClient, error) {
	conn, err := grpc.NewClient(endpoint, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial ticket registry grpc: %w", err)
	}
	return &TicketRegistryClient{conn: conn}, nil
}

func (c *TicketRegistryClient) Close() error { return c.conn.Close() }

func (c *TicketRegistryClient) IsAnchored(ctx context.Context, ticketCommit common.Hash) (bool, error) {
	resp, err := invokeStruct(ctx, c.conn,
		"/ticketrail.registry.v1.TicketRegistryService/IsAnchored",
		map[string]any{"ticket_commit": ticketCommit.Hex()})
	if err != nil {
		return false, fmt.Errorf("registry is_anchored: %w", err)
	}
	return boolField(resp, "anchored"), nil
}

func (c *TicketRegistryClient) GetTicket(ctx context.Context, ticketCommit common.Hash) (ports.TicketInfo, error) {
	resp, err := invokeStruct(ctx, c.conn,
		"/ticketrail.registry.v1.TicketRegistryService/GetTicket",
		map[string]any{"ticket_commit": ticketCommit.Hex()})
	if err != nil {
		return ports.TicketInfo{}, fmt.Errorf("registry get_ticket: %w", err)
	}
	info := ports.TicketInfo{
		Assurance: stringField(resp, "assurance"),
		URI:       stringField(resp, "uri"),
	}
	for key, dst := range map[string]*common.Hash{
		"event_commit":  &info.EventCommit,
		"holder_commit": &info.HolderCommit,
		"policy_commit": &info.PolicyCommit,
	} {
		raw := stringField(resp, key)
		if raw == "" {
			continue
		}
		hash, err := domain.ParseHash(raw)
		if err != nil {
			return ports.TicketInfo{}, fmt.Errorf("registry get_ticket: bad %s: %w", key, err)
		}
		*dst = hash
	}
	return info, nil
}

// RevocationAuthorityClient asks the trust service whether a ticket has been
// revoked since anchoring.
type RevocationAuthorityClient struct {
	conn *grpc.ClientConn
}

func NewRevocationAuthorityClient(endpoint string) (*RevocationAuthorityClient, error) {
	conn, err := grpc.NewClient(endpoint, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial revocation authority grpc: %w", err)
	}
	return &RevocationAuthorityClient{conn: conn}, nil
}

func (c *RevocationAuthorityClient) Close() error { return c.conn.Close() }

func (c *RevocationAuthorityClient) IsRevoked(ctx context.Context, ticketCommit common.Hash) (bool, error) {
	resp, err := invokeStruct(ctx, c.conn,
		"/ticketrail.trust.v1.RevocationAuthorityService/IsRevoked",
		map[string]any{"ticket_commit": ticketCommit.Hex()})
	if err != nil {
		return false, fmt.Errorf("revocation is_revoked: %w", err)
	}
	return boolField(resp, "revoked"), nil
}

// TreasuryClient moves settled funds through the platform treasury service.
// TransferBatch relies on the treasury executing all legs in one ledger
// transaction.
type TreasuryClient struct {
	conn *grpc.ClientConn
}

func NewTreasuryClient(endpoint string) (*TreasuryClient, error) {
	conn, err := grpc.NewClient(endpoint, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial treasury grpc: %w", err)
	}
	return &TreasuryClient{conn: conn}, nil
}

func (c *TreasuryClient) Close() error { return c.conn.Close() }

func (c *TreasuryClient) Transfer(ctx context.Context, to common.Address, amount uint64) error {
	_, err := invokeStruct(ctx, c.conn,
		"/ticketrail.treasury.v1.TreasuryService/Transfer",
		map[string]any{"to": to.Hex(), "amount": float64(amount)})
	if err != nil {
		return fmt.Errorf("treasury transfer: %w", err)
	}
	return nil
}

func (c *TreasuryClient) TransferBatch(ctx context.Context, payments []ports.Payment) error {
	legs := make([]any, 0, len(payments))
	for _, p := range payments {
		legs = append(legs, map[string]any{"to": p.To.Hex(), "amount": float64(p.Amount)})
	}
	_, err := invokeStruct(ctx, c.conn,
		"/ticketrail.treasury.v1.TreasuryService/TransferBatch",
		map[string]any{"payments": legs})
	if err != nil {
		return fmt.Errorf("treasury transfer_batch: %w", err)
	}
	return nil
}

func invokeStruct(ctx context.Context, conn *grpc.ClientConn, fullMethod string, fields map[string]any) (*structpb.Struct, error) {
	req, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	resp := &structpb.Struct{}
	if err := conn.Invoke(ctx, fullMethod, req, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func boolField(req *structpb.Struct, key string) bool {
	if req == nil {
		return false
	}
	if v, ok := req.GetFields()[key]; ok {
		return v.GetBoolValue()
	}
	return false
}

func orderFromStruct(req *structpb.Struct) (domain.Order, error) {
	ticketCommit, err := domain.ParseHash(stringField(req, "ticket_commit"))
	if err != nil {
		return domain.Order{}, err
	}
	seller, err := domain.ParseAddress(stringField(req, "seller"))
	if err != nil {
		return domain.Order{}, err
	}
	buyer, err := domain.ParseAddress(stringField(req, "buyer"))
	if err != nil {
		return domain.Order{}, err
	}
	return domain.Order{
		TicketCommit:   ticketCommit,
		Seller:         seller,
		Buyer:          buyer,
		Price:          uint64(numberField(req, "price")),
		Expiry:         time.Unix(int64(numberField(req, "expiry")), 0).UTC(),
		MaxPriceCapBps: uint32(numberField(req, "max_price_cap_bps")),
	}, nil
}

var (
	_ ports.TicketRegistry      = (*TicketRegistryClient)(nil)
	_ ports.RevocationAuthority = (*RevocationAuthorityClient)(nil)
	_ ports.FundsTransferor     = (*TreasuryClient)(nil)
)
