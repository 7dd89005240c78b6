package grpc

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/dmitrijs2005/gophtodo/internal/common"
	"github.com/dmitrijs2005/gophtodo/internal/server/auth"
	"github.com/dmitrijs2005/gophtodo/internal/server/models"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// The authenticated RPCs carry well-known protobuf types. Payloads have the
// same field names as the REST responses.
const (
	todoServiceName = "todo.v1.Todo"
	userInfoMethod  = "/" + todoServiceName + "/UserInfo"
	listTasksMethod = "/" + todoServiceName + "/ListTasks"
)

type UserService interface {
	Profile(ctx context.Context, userID int64) (*models.Profile, error)
}

type TaskService interface {
	List(ctx context.Context, userID int64) ([]models.Task, error)
}

// TodoServer is implemented by GRPCServer.
type TodoServer interface {
	UserInfo(ctx context.Context, in *emptypb.Empty) (*structpb.Struct, error)
	ListTasks(ctx context.Context, in *emptypb.Empty) (*structpb.ListValue, error)
}

var todoServiceDesc = grpc.ServiceDesc{
	ServiceName: todoServiceName,
	HandlerType: (*TodoServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "UserInfo", Handler: userInfoHandler},
		{MethodName: "ListTasks", Handler: listTasksHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "todo/v1/todo.proto",
}

func userInfoHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TodoServer).UserInfo(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: userInfoMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(TodoServer).UserInfo(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func listTasksHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TodoServer).ListTasks(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: listTasksMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(TodoServer).ListTasks(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func (s *GRPCServer) UserInfo(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	id, ok := auth.IdentityFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "unauthenticated")
	}

	profile, err := s.users.Profile(ctx, id.UserID)
	if err != nil {
		return nil, s.toStatus(ctx, err, "user not found")
	}

	var fields map[string]any
	if err := roundTrip(profile, &fields); err != nil {
		return nil, s.toStatus(ctx, err, "")
	}
	return structpb.NewStruct(fields)
}

func (s *GRPCServer) ListTasks(ctx context.Context, _ *emptypb.Empty) (*structpb.ListValue, error) {
	id, ok := auth.IdentityFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "unauthenticated")
	}

	tasks, err := s.tasks.List(ctx, id.UserID)
	if err != nil {
		return nil, s.toStatus(ctx, err, "")
	}

	items := []any{}
	if len(tasks) > 0 {
		if err := roundTrip(tasks, &items); err != nil {
			return nil, s.toStatus(ctx, err, "")
		}
	}
	return structpb.NewList(items)
}

func (s *GRPCServer) toStatus(ctx context.Context, err error, notFound string) error {
	if errors.Is(err, common.ErrorNotFound) && notFound != "" {
		return status.Error(codes.NotFound, notFound)
	}
	s.logger.Error(ctx, "rpc failed", "error", err)
	return status.Error(codes.Internal, "internal error")
}

// roundTrip converts v to its generic JSON form so structpb can carry it.
func roundTrip(v any, dst any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, dst)
}
