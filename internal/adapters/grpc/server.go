package grpc

import (
	"context"
	"errors"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/ticketrail/settlement/internal/application"
	"github.com/ticketrail/settlement/internal/domain"
)

// SettlementInternalService is the read surface other platform services use:
// escrow state, pool balance, and sale-id derivation.
type SettlementInternalService interface {
	GetEscrowRecord(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetPoolBalance(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ComputeSaleID(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type SettlementInternalServer struct {
	service *application.Service
}

func NewSettlementInternalServer(service *application.Service) *SettlementInternalServer {
	return &SettlementInternalServer{service: service}
}

func Register(server grpc.ServiceRegistrar, svc SettlementInternalService) {
	server.RegisterService(&grpc.ServiceDesc{
		ServiceName: "ticketrail.settlement.v1.SettlementInternalService",
		HandlerType: (*SettlementInternalService)(nil),
		Methods: []grpc.MethodDesc{
			{MethodName: "GetEscrowRecord", Handler: structHandler(svc.GetEscrowRecord, "GetEscrowRecord")},
			{MethodName: "GetPoolBalance", Handler: structHandler(svc.GetPoolBalance, "GetPoolBalance")},
			{MethodName: "ComputeSaleID", Handler: structHandler(svc.ComputeSaleID, "ComputeSaleID")},
		},
		Streams:  []grpc.StreamDesc{},
		Metadata: "ticketrail/settlement/v1/settlement_internal.proto",
	}, svc)
}

func (s *SettlementInternalServer) GetEscrowRecord(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	saleID, err := domain.ParseHash(stringField(req, "sale_id"))
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, "invalid sale_id")
	}
	rec, err := s.service.GetEscrowRecord(ctx, saleID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, status.Error(codes.NotFound, "escrow record not found")
		}
		return nil, status.Errorf(codes.Internal, "get escrow record: %v", err)
	}
	fields := map[string]any{
		"sale_id":       rec.SaleID.Hex(),
		"ticket_commit": rec.TicketCommit.Hex(),
		"seller":        rec.Seller.Hex(),
		"buyer":         rec.Buyer.Hex(),
		"amount":        float64(rec.Amount),
		"status":        rec.Status,
		"funded_at":     rec.FundedAt.Unix(),
	}
	if rec.ClosedAt != nil {
		fields["closed_at"] = rec.ClosedAt.Unix()
	}
	resp, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "build response: %v", err)
	}
	return resp, nil
}

func (s *SettlementInternalServer) GetPoolBalance(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	balance, err := s.service.PoolBalance(ctx)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "get pool balance: %v", err)
	}
	resp, err := structpb.NewStruct(map[string]any{"balance": float64(balance)})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "build response: %v", err)
	}
	return resp, nil
}

func (s *SettlementInternalServer) ComputeSaleID(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	order, err := orderFromStruct(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, "invalid order fields")
	}
	resp, err := structpb.NewStruct(map[string]any{"sale_id": domain.ComputeSaleID(order).Hex()})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "build response: %v", err)
	}
	return resp, nil
}

func structHandler(method func(context.Context, *structpb.Struct) (*structpb.Struct, error), name string) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	fullMethod := "/ticketrail.settlement.v1.SettlementInternalService/" + name
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		req := &structpb.Struct{}
		if err := dec(req); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return method(ctx, req)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			typed, ok := req.(*structpb.Struct)
			if !ok {
				return nil, status.Error(codes.InvalidArgument, "invalid request type")
			}
			return method(ctx, typed)
		}
		return interceptor(ctx, req, info, handler)
	}
}

func stringField(req *structpb.Struct, key string) string {
	if req == nil {
		return ""
	}
	if v, ok := req.GetFields()[key]; ok {
		return v.GetStringValue()
	}
	return ""
}

func numberField(req *structpb.Struct, key string) float64 {
	if req == nil {
		return 0
	}
	if v, ok := req.GetFields()[key]; ok {
		return v.GetNumberValue()
	}
	return 0
}
