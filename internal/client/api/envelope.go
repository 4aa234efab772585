package api

import (
	"encoding/json"
	"fmt"

	"github.com/kadrio/clientkit/internal/client/models"
	"github.com/kadrio/clientkit/internal/client/permission"
	"github.com/kadrio/clientkit/internal/common"
)

// envelope is the outer response shape every endpoint shares.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// unnest peels one spurious {"data": {...}} wrapper. Some backend builds
// double-wrap payloads (data.data.user instead of data.user); both shapes
// are part of the de facto contract.
func unnest(data json.RawMessage) json.RawMessage {
	var probe struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return data
	}
	if len(probe.Data) > 0 && probe.Data[0] == '{' {
		return probe.Data
	}
	return data
}

type loginPayload struct {
	User         *models.User `json:"user"`
	AccessToken  string       `json:"accessToken"`
	Token        string       `json:"token"`
	RefreshToken string       `json:"refreshToken"`
}

func (p *loginPayload) token() string {
	if p.AccessToken != "" {
		return p.AccessToken
	}
	return p.Token
}

func decodeLoginResult(data json.RawMessage) (*LoginResult, error) {
	var p loginPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: login payload: %v", common.ErrorMalformedResponse, err)
	}
	if p.User == nil && p.token() == "" {
		// data.data.user shape.
		if err := json.Unmarshal(unnest(data), &p); err != nil {
			return nil, fmt.Errorf("%w: login payload: %v", common.ErrorMalformedResponse, err)
		}
	}
	if p.User == nil || p.User.ID == 0 || p.token() == "" {
		return nil, fmt.Errorf("%w: login payload missing user or token", common.ErrorMalformedResponse)
	}
	return &LoginResult{User: p.User, AccessToken: p.token(), RefreshToken: p.RefreshToken}, nil
}

func decodeUser(data json.RawMessage) (*models.User, error) {
	var p struct {
		User *models.User `json:"user"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: user payload: %v", common.ErrorMalformedResponse, err)
	}
	if p.User == nil {
		if err := json.Unmarshal(unnest(data), &p); err != nil {
			return nil, fmt.Errorf("%w: user payload: %v", common.ErrorMalformedResponse, err)
		}
	}
	if p.User == nil || p.User.ID == 0 {
		return nil, fmt.Errorf("%w: user payload missing identity", common.ErrorMalformedResponse)
	}
	return p.User, nil
}

func decodeUserTypeGrant(data json.RawMessage) ([]permission.RawModule, error) {
	var p struct {
		UserType *struct {
			SidebarModules json.RawMessage `json:"sidebar_modules"`
		} `json:"userType"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: user type payload: %v", common.ErrorMalformedResponse, err)
	}
	if p.UserType == nil {
		if err := json.Unmarshal(unnest(data), &p); err != nil {
			return nil, fmt.Errorf("%w: user type payload: %v", common.ErrorMalformedResponse, err)
		}
	}
	if p.UserType == nil {
		return nil, fmt.Errorf("%w: user type payload missing userType", common.ErrorMalformedResponse)
	}
	// A user type without modules is a valid deny-all grant.
	return permission.ParseRawModules(p.UserType.SidebarModules), nil
}

func decodeTokenPair(data json.RawMessage) (*TokenPair, error) {
	var p loginPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: refresh payload: %v", common.ErrorMalformedResponse, err)
	}
	if p.token() == "" {
		if err := json.Unmarshal(unnest(data), &p); err != nil {
			return nil, fmt.Errorf("%w: refresh payload: %v", common.ErrorMalformedResponse, err)
		}
	}
	if p.token() == "" {
		return nil, fmt.Errorf("%w: refresh payload missing token", common.ErrorMalformedResponse)
	}
	return &TokenPair{AccessToken: p.token(), RefreshToken: p.RefreshToken}, nil
}
