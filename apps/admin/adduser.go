package main

import (
	"fmt"

	"github.com/cs-students/markis/core"
	"github.com/cs-students/markis/core/identity"
)

// addUser registers the account in the identity service. Group
// memberships (admin included) stay managed there.
func (cli *commandLine) addUser(uname, email, first, last, pwd string) error {
	nu := identity.NewUser{
		Username:        core.CleanString(uname, true /* lower */),
		FirstName:       core.CleanString(first),
		LastName:        core.CleanString(last),
		Email:           core.CleanString(email, true /* lower */),
		Password:        pwd,
		PasswordConfirm: pwd,
	}
	if err := cli.idSvc.Register(nu); err != nil {
		return err
	}
	fmt.Printf("user %q registered\n", nu.Username)
	return nil
}
