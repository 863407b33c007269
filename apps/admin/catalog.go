package main

import (
	"context"
	"fmt"

	"github.com/cs-students/markis/core"
	"github.com/cs-students/markis/core/catalog"
)

func (cli *commandLine) addFaculty(name string) error {
	fac, err := cli.catalogSvc.CreateFaculty(context.Background(), catalog.Faculty{Name: core.CleanString(name)})
	if err != nil {
		return err
	}
	fmt.Printf("faculty %q created with id %d\n", fac.Name, fac.ID)
	return nil
}

func (cli *commandLine) addSubject(id, name string, facultyID int) error {
	sub := catalog.Subject{
		ID:        core.CleanString(id, true /* lower */),
		Name:      core.CleanString(name),
		FacultyID: facultyID,
	}
	sub, err := cli.catalogSvc.CreateSubject(context.Background(), sub)
	if err != nil {
		return err
	}
	fmt.Printf("subject %q created\n", sub.ID)
	return nil
}

func (cli *commandLine) removeFile(id string) error {
	if err := cli.catalogSvc.RemoveFile(context.Background(), id); err != nil {
		return err
	}
	fmt.Println("file removed")
	return nil
}
