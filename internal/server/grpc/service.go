package grpc

import (
	"context"

	"github.com/dmitrijs2005/ageguard/internal/server/models"
	"google.golang.org/grpc"
)

const (
	serviceName = "ageguard.ComplianceService"

	processConsentMethod       = "/" + serviceName + "/ProcessConsent"
	getRestrictionsMethod      = "/" + serviceName + "/GetRestrictions"
	getAccountStatusMethod     = "/" + serviceName + "/GetAccountStatus"
	overrideRestrictionsMethod = "/" + serviceName + "/OverrideRestrictions"
)

type ProcessConsentRequest struct {
	Token              string                       `json:"token"`
	Agrees             bool                         `json:"agrees"`
	CustomRestrictions *models.RestrictionOverrides `json:"customRestrictions,omitempty"`
}

type GetRestrictionsRequest struct{}

type GetAccountStatusRequest struct{}

type OverrideRestrictionsRequest struct {
	UserID       string                    `json:"userId"`
	Restrictions *models.RestrictionBundle `json:"restrictions"`
}

type RestrictionsResponse struct {
	Restrictions *models.RestrictionBundle `json:"restrictions"`
}

// ComplianceServiceServer is implemented by GRPCServer.
type ComplianceServiceServer interface {
	ProcessConsent(context.Context, *ProcessConsentRequest) (*models.ConsentOutcome, error)
	GetRestrictions(context.Context, *GetRestrictionsRequest) (*RestrictionsResponse, error)
	GetAccountStatus(context.Context, *GetAccountStatusRequest) (*models.AccountStatus, error)
	OverrideRestrictions(context.Context, *OverrideRestrictionsRequest) (*RestrictionsResponse, error)
}

func processConsentHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ProcessConsentRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ComplianceServiceServer).ProcessConsent(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: processConsentMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ComplianceServiceServer).ProcessConsent(ctx, req.(*ProcessConsentRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func getRestrictionsHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(GetRestrictionsRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ComplianceServiceServer).GetRestrictions(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: getRestrictionsMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ComplianceServiceServer).GetRestrictions(ctx, req.(*GetRestrictionsRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func getAccountStatusHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(GetAccountStatusRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ComplianceServiceServer).GetAccountStatus(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: getAccountStatusMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ComplianceServiceServer).GetAccountStatus(ctx, req.(*GetAccountStatusRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func overrideRestrictionsHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(OverrideRestrictionsRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ComplianceServiceServer).OverrideRestrictions(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: overrideRestrictionsMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ComplianceServiceServer).OverrideRestrictions(ctx, req.(*OverrideRestrictionsRequest))
	}
	return interceptor(ctx, in, info, handler)
}

var ComplianceServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*ComplianceServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ProcessConsent", Handler: processConsentHandler},
		{MethodName: "GetRestrictions", Handler: getRestrictionsHandler},
		{MethodName: "GetAccountStatus", Handler: getAccountStatusHandler},
		{MethodName: "OverrideRestrictions", Handler: overrideRestrictionsHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "ageguard/compliance",
}

// ComplianceClient calls ComplianceService with the JSON codec.
type ComplianceClient struct {
	cc grpc.ClientConnInterface
}

func NewComplianceClient(cc grpc.ClientConnInterface) *ComplianceClient {
	return &ComplianceClient{cc: cc}
}

func (c *ComplianceClient) ProcessConsent(ctx context.Context, in *ProcessConsentRequest, opts ...grpc.CallOption) (*models.ConsentOutcome, error) {
	out := new(models.ConsentOutcome)
	if err := c.invoke(ctx, processConsentMethod, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ComplianceClient) GetRestrictions(ctx context.Context, in *GetRestrictionsRequest, opts ...grpc.CallOption) (*RestrictionsResponse, error) {
	out := new(RestrictionsResponse)
	if err := c.invoke(ctx, getRestrictionsMethod, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ComplianceClient) GetAccountStatus(ctx context.Context, in *GetAccountStatusRequest, opts ...grpc.CallOption) (*models.AccountStatus, error) {
	out := new(models.AccountStatus)
	if err := c.invoke(ctx, getAccountStatusMethod, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ComplianceClient) OverrideRestrictions(ctx context.Context, in *OverrideRestrictionsRequest, opts ...grpc.CallOption) (*RestrictionsResponse, error) {
	out := new(RestrictionsResponse)
	if err := c.invoke(ctx, overrideRestrictionsMethod, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ComplianceClient) invoke(ctx context.Context, method string, in, out any, opts []grpc.CallOption) error {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(codecName)}, opts...)
	return c.cc.Invoke(ctx, method, in, out, opts...)
}
