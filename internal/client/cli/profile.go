package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/socialfeed/internal/client/models"
)

// Profile prints the details of userID, or of the logged in user when empty.
// Until the backend answers the cached profile is shown for the own account.
func (a *App) Profile(ctx context.Context, userID string) error {
	me := a.session.User()
	if userID == "" && me != nil {
		userID = me.ID
	}

	u, err := a.userService.Details(ctx, userID)
	if err != nil {
		if me != nil && me.ID == userID {
			printUser(a.out, *me)
		}
		a.reportLoad("profile", "profile", err)
		return err
	}
	printUser(a.out, u)
	return nil
}

// EditProfile asks for new profile fields and saves the changed ones.
func (a *App) EditProfile(ctx context.Context) error {
	me := a.session.User()
	if me == nil {
		fmt.Fprintln(a.out, "Not logged in")
		return nil
	}

	var patch models.ProfileUpdate
	var err error
	if patch.FirstName, err = GetOptionalText(a.reader, "First name", a.out); err != nil {
		return err
	}
	if patch.LastName, err = GetOptionalText(a.reader, "Last name", a.out); err != nil {
		return err
	}
	if patch.Bio, err = GetOptionalText(a.reader, "Bio", a.out); err != nil {
		return err
	}
	if patch.FirstName == nil && patch.LastName == nil && patch.Bio == nil {
		fmt.Fprintln(a.out, "Nothing to update")
		return nil
	}

	u, err := a.userService.UpdateProfile(ctx, me.ID, patch)
	if err != nil {
		a.reportInput(err)
		return err
	}
	printUser(a.out, u)
	return nil
}
