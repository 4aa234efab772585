package cli

import (
	"context"
	"os"

	"github.com/kadrio/clientkit/internal/client/api"
	"github.com/kadrio/clientkit/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for the new actor's details and attempts to create an
// account. Registration also logs the actor in, so on success the session
// is immediately usable. The password byte slice is wiped before returning.
func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}
	firstName, err := getSimpleText(a.reader, "Enter first name", os.Stdout)
	if err != nil {
		return err
	}
	lastName, err := getSimpleText(a.reader, "Enter last name", os.Stdout)
	if err != nil {
		return err
	}
	companyName, err := getSimpleText(a.reader, "Enter company name (empty to join by invitation)", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	res := a.session.Register(ctx, api.RegisterRequest{
		Email:       email,
		Password:    string(password),
		FirstName:   firstName,
		LastName:    lastName,
		CompanyName: companyName,
	})
	if !res.Success {
		printlnFn("Registration failed:", res.Message)
		return nil
	}

	printlnFn("Success!")
	return nil
}

// Login prompts for credentials and authenticates. In demo mode the
// password is checked against the locally cached verifier instead of the
// backend. The password byte slice is wiped before returning.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if a.config.DemoMode {
		if err := a.session.OfflineUnlock(ctx, email, password); err != nil {
			printlnFn("Offline unlock failed:", err.Error())
			return nil
		}
		if err := a.session.Bootstrap(ctx); err != nil {
			printlnFn("Session restore failed:", err.Error())
			return nil
		}
		printlnFn("Unlocked from local cache")
		return nil
	}

	res := a.session.Login(ctx, email, string(password))
	if !res.Success {
		printlnFn("Login failed:", res.Message)
		return nil
	}

	printlnFn("Success!")
	return nil
}

// Logout ends the session. Client-side logout always succeeds, even when
// the server call fails.
func (a *App) Logout(ctx context.Context) error {
	a.session.Logout(ctx)
	printlnFn("Logged out")
	return nil
}
