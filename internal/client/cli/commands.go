package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophprofile/internal/client/client"
)

var errEmptyInput = errors.New("email and password are required")

func (a *App) readCredentials(args []string) (string, string, error) {
	var email string
	if len(args) > 0 {
		email = args[0]
	} else {
		var err error
		email, err = GetSimpleText(a.reader, "Email", a.prompt)
		if err != nil {
			return "", "", err
		}
	}

	password, err := GetPassword(a.prompt)
	if err != nil {
		return "", "", err
	}

	if email == "" || password == "" {
		return "", "", errEmptyInput
	}
	return email, password, nil
}

func (a *App) register(ctx context.Context, args []string) error {
	email, password, err := a.readCredentials(args)
	if err != nil {
		return err
	}

	msg, err := a.api.Register(ctx, email, password)
	if err != nil {
		return fmt.Errorf("register: %w", err)
	}
	return a.print(map[string]string{"msg": msg})
}

func (a *App) login(ctx context.Context, args []string) error {
	email, password, err := a.readCredentials(args)
	if err != nil {
		return err
	}

	tokens, err := a.api.Login(ctx, email, password)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	if err := a.tokens.Save(tokens); err != nil {
		return err
	}
	return a.print(tokens)
}

// restore loads the saved pair into the client and returns a function that
// saves it back when a call changed it.
func (a *App) restore() (func() error, error) {
	saved, err := a.tokens.Load()
	if err != nil {
		return nil, err
	}
	a.api.SetTokens(saved)

	return func() error {
		if current := a.api.Tokens(); current != saved {
			return a.tokens.Save(current)
		}
		return nil
	}, nil
}

func (a *App) refresh(ctx context.Context) error {
	persist, err := a.restore()
	if err != nil {
		return err
	}

	access, err := a.api.Refresh(ctx)
	if err != nil {
		return fmt.Errorf("refresh: %w", err)
	}
	if err := persist(); err != nil {
		return err
	}
	return a.print(map[string]string{"access_token": access})
}

func (a *App) whoami(ctx context.Context) error {
	persist, err := a.restore()
	if err != nil {
		return err
	}

	id, err := a.api.WhoAmI(ctx)
	if err != nil {
		return fmt.Errorf("whoami: %w", err)
	}
	if err := persist(); err != nil {
		return err
	}
	return a.print(id)
}

func (a *App) logout() error {
	if err := a.tokens.Save(client.Tokens{}); err != nil {
		return err
	}
	return a.print(map[string]string{"msg": "Logged out"})
}
