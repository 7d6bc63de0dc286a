package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/socialfeed/internal/client/validation"
	"github.com/dmitrijs2005/socialfeed/internal/common"
)

// getSimpleText, getPassword and getMultiline are indirections used to
// facilitate testing. They point to interactive input helpers and can be
// swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword
var getMultiline = GetMultiline

// Signup prompts for the account fields and creates the account. The user
// has to login afterwards.
func (a *App) Signup(ctx context.Context) error {
	var form validation.SignupForm
	var err error

	if form.FirstName, err = getSimpleText(a.reader, "Enter first name", a.out); err != nil {
		return err
	}
	if form.LastName, err = getSimpleText(a.reader, "Enter last name", a.out); err != nil {
		return err
	}
	if form.Email, err = getSimpleText(a.reader, "Enter email", a.out); err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)
	form.Password = string(password)

	if err := a.authService.Signup(ctx, form); err != nil {
		a.reportInput(err)
		return err
	}
	return nil
}

// Login prompts for credentials and opens a session. Push registration
// starts in the background once logged in.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	user, err := a.authService.Login(ctx, validation.LoginForm{Email: email, Password: string(password)})
	if err != nil {
		a.reportInput(err)
		return err
	}

	a.resetSeen()
	a.registrar.Start(ctx)
	if user != nil {
		a.log.Info(ctx, "logged in", "user_id", user.ID)
	}
	return nil
}

// Logout ends the session locally even when the backend is unreachable.
func (a *App) Logout(ctx context.Context) error {
	if err := a.authService.Logout(ctx); err != nil {
		fmt.Fprintf(a.out, "Error logging out: %s\n", err)
		return err
	}
	a.feedUser = ""
	a.resetSeen()
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

// Whoami prints the cached profile of the logged in user.
func (a *App) Whoami(ctx context.Context) error {
	u := a.session.User()
	if u == nil {
		fmt.Fprintln(a.out, "Not logged in")
		return nil
	}
	printUser(a.out, *u)
	if exp, ok := a.session.ExpiresAt(); ok {
		fmt.Fprintf(a.out, "  Session expires %s\n", exp.Local().Format(time.DateTime))
	}
	return nil
}
