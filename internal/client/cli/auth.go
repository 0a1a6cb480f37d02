package cli

import (
	"context"
	"errors"
	"os"

	"github.com/dmitrijs2005/orbitcheck/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Login prompts for the operator credentials. It tries the server first and
// falls back to the saved session when the server is unreachable. The mode
// ends up online, offline, or disabled when neither works.
func (a *App) Login(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter operator name", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	var (
		operatorID string
		mode       Mode
	)

	operatorID, err = a.authService.OnlineLogin(ctx, userName, password)
	switch {
	case err == nil:
		printlnFn("Login successful")
		mode = ModeOnline
	case isUnavailable(err):
		printlnFn("Server unavailable, trying offline login...")
		operatorID, err = a.authService.OfflineLogin(ctx, userName, password)
		if err != nil {
			a.log.Warn(ctx, "offline login failed", "error", err)
			printlnFn("Offline login unsuccessful:", err)
			mode = ModeDisabled
		} else {
			printlnFn("Offline login successful")
			mode = ModeOffline
		}
	default:
		a.log.Warn(ctx, "login failed", "error", err)
		printlnFn("Login unsuccessful:", err)
		return nil
	}

	if operatorID != "" {
		a.mu.Lock()
		a.userName = userName
		a.operatorID = operatorID
		a.mu.Unlock()
	}
	a.setMode(mode)
	return nil
}

// Logout forgets the saved operator session. Cached rosters and unsynced
// marks stay on the device.
func (a *App) Logout(ctx context.Context) error {
	if err := a.authService.Logout(ctx); err != nil {
		return err
	}
	a.mu.Lock()
	a.userName = ""
	a.operatorID = ""
	a.mu.Unlock()
	return nil
}

var errNotLoggedIn = errors.New("log in first")

func (a *App) requireOperator() (string, error) {
	_, op, _ := a.session()
	if op == "" {
		return "", errNotLoggedIn
	}
	return op, nil
}

