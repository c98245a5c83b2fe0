package socket

import (
	"context"

	"github.com/SamuelLopess03/Consulta-Medica-SD/internal/userdir/application/ports/in"
)

// Действия протокола
const (
	ActionCreateUser   = "create_user"
	ActionAuthenticate = "authenticate"
	ActionGetUser      = "get_user"
	ActionUpdateUser   = "update_user"
	ActionDeleteUser   = "delete_user"
	ActionListUsers    = "list_users"
	ActionVerifyToken  = "verify_token"
)

// UseCases: все use case'ы сервиса
type UseCases struct {
	CreateUser   in.CreateUserUseCase
	Authenticate in.AuthenticateUseCase
	GetUser      in.GetUserUseCase
	UpdateUser   in.UpdateUserUseCase
	DeleteUser   in.DeleteUserUseCase
	ListUsers    in.ListUsersUseCase
	VerifyToken  in.VerifyTokenUseCase
}

type userIDData struct {
	UserID int64 `json:"user_id"`
}

type listUsersData struct {
	Filters in.ListUsersInput `json:"filters"`
}

type verifyTokenData struct {
	Token string `json:"token"`
}

// Handlers связывает действия протокола с use case'ами
type Handlers struct {
	uc UseCases
}

func NewHandlers(uc UseCases) *Handlers {
	return &Handlers{uc: uc}
}

// Register регистрирует все действия на сервере
func (h *Handlers) Register(s *Server) {
	s.Handle(ActionCreateUser, h.createUser)
	s.Handle(ActionAuthenticate, h.authenticate)
	s.Handle(ActionGetUser, h.getUser)
	s.Handle(ActionUpdateUser, h.updateUser)
	s.Handle(ActionDeleteUser, h.deleteUser)
	s.Handle(ActionListUsers, h.listUsers)
	s.Handle(ActionVerifyToken, h.verifyToken)
}

func (h *Handlers) createUser(ctx context.Context, req *Request) (Response, error) {
	input, err := Bind[in.CreateUserInput](req)
	if err != nil {
		return nil, err
	}
	user, err := h.uc.CreateUser.Execute(ctx, input)
	if err != nil {
		return nil, err
	}
	return success(Response{"message": "user created successfully", "user": user}), nil
}

func (h *Handlers) authenticate(ctx context.Context, req *Request) (Response, error) {
	input, err := Bind[in.AuthenticateInput](req)
	if err != nil {
		return nil, err
	}
	res, err := h.uc.Authenticate.Execute(ctx, input)
	if err != nil {
		return nil, err
	}
	return success(Response{
		"message": "authentication successful",
		"token":   res.Token,
		"user":    res.User,
	}), nil
}

func (h *Handlers) getUser(ctx context.Context, req *Request) (Response, error) {
	data, err := Bind[userIDData](req)
	if err != nil {
		return nil, err
	}
	user, err := h.uc.GetUser.Execute(ctx, data.UserID)
	if err != nil {
		return nil, err
	}
	return success(Response{"user": user}), nil
}

func (h *Handlers) updateUser(ctx context.Context, req *Request) (Response, error) {
	input, err := Bind[in.UpdateUserInput](req)
	if err != nil {
		return nil, err
	}
	user, err := h.uc.UpdateUser.Execute(ctx, input)
	if err != nil {
		return nil, err
	}
	return success(Response{"message": "user updated successfully", "user": user}), nil
}

func (h *Handlers) deleteUser(ctx context.Context, req *Request) (Response, error) {
	data, err := Bind[userIDData](req)
	if err != nil {
		return nil, err
	}
	if err := h.uc.DeleteUser.Execute(ctx, data.UserID); err != nil {
		return nil, err
	}
	return success(Response{"message": "user deactivated successfully"}), nil
}

func (h *Handlers) listUsers(ctx context.Context, req *Request) (Response, error) {
	data, err := Bind[listUsersData](req)
	if err != nil {
		return nil, err
	}
	users, err := h.uc.ListUsers.Execute(ctx, data.Filters)
	if err != nil {
		return nil, err
	}
	return success(Response{"users": users, "count": len(users)}), nil
}

func (h *Handlers) verifyToken(ctx context.Context, req *Request) (Response, error) {
	data, err := Bind[verifyTokenData](req)
	if err != nil {
		return nil, err
	}
	payload, err := h.uc.VerifyToken.Execute(ctx, data.Token)
	if err != nil {
		return nil, err
	}
	return success(Response{"payload": payload}), nil
}
