package jwttoken

import (
	authmw "leadgate/pkg/platform/middleware/auth"
)

// ServiceAdapter bridges Service to the auth middleware's validator interface.
type ServiceAdapter struct {
	service *Service
}

func NewServiceAdapter(service *Service) *ServiceAdapter {
	return &ServiceAdapter{service: service}
}

func (a *ServiceAdapter) ValidateToken(tokenString string) (*authmw.OpsClaims, error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return &authmw.OpsClaims{Role: claims.Role, JTI: claims.ID}, nil
}
