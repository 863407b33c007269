package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"syscall"

	"golang.org/x/term"

	"github.com/cs-students/markis/core/catalog"
	"github.com/cs-students/markis/core/identity"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db         *sql.DB
	catalogSvc *catalog.Service
	idSvc      identity.Service
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate up|down|status [ARGS] - run database migrations")
	fmt.Println("  addfaculty -name NAME - create a faculty")
	fmt.Println("  addsubject -id ID -name NAME -faculty FACULTY_ID - create a subject")
	fmt.Println("  adduser -username USERNAME -email EMAIL -first FIRST -last LAST - register a user. The password will be prompted next.")
	fmt.Println("  rmfile -id ID - remove an uploaded file, its content and engagement")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addFacultyCmd := flag.NewFlagSet("addfaculty", flag.ExitOnError)
	addFacultyName := addFacultyCmd.String("name", "", "The faculty name.")

	addSubjectCmd := flag.NewFlagSet("addsubject", flag.ExitOnError)
	addSubjectID := addSubjectCmd.String("id", "", "The subject code, eg. cs101.")
	addSubjectName := addSubjectCmd.String("name", "", "The subject name.")
	addSubjectFaculty := addSubjectCmd.Int("faculty", 0, "The owning faculty's ID.")

	addUserCmd := flag.NewFlagSet("adduser", flag.ExitOnError)
	addUserUname := addUserCmd.String("username", "", "The user's username.")
	addUserEmail := addUserCmd.String("email", "", "The user's email.")
	addUserFirst := addUserCmd.String("first", "", "The user's first name.")
	addUserLast := addUserCmd.String("last", "", "The user's last name.")

	rmFileCmd := flag.NewFlagSet("rmfile", flag.ExitOnError)
	rmFileID := rmFileCmd.String("id", "", "The file's ID.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])

	case "addfaculty":
		if err := addFacultyCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addFacultyName == "" {
			addFacultyCmd.Usage()
			return errHelp
		}
		return cli.addFaculty(*addFacultyName)

	case "addsubject":
		if err := addSubjectCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addSubjectID == "" || *addSubjectName == "" || *addSubjectFaculty == 0 {
			addSubjectCmd.Usage()
			return errHelp
		}
		return cli.addSubject(*addSubjectID, *addSubjectName, *addSubjectFaculty)

	case "adduser":
		if err := addUserCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addUserUname == "" || *addUserEmail == "" {
			addUserCmd.Usage()
			return errHelp
		}
		fmt.Print("Enter password:")
		pwd, err := readPasswordFunc(syscall.Stdin)
		fmt.Println()
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			addUserCmd.Usage()
			return errHelp
		}
		return cli.addUser(*addUserUname, *addUserEmail, *addUserFirst, *addUserLast, string(pwd))

	case "rmfile":
		if err := rmFileCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *rmFileID == "" {
			rmFileCmd.Usage()
			return errHelp
		}
		return cli.removeFile(*rmFileID)

	default:
		cli.printUsage()
		return errHelp
	}
}
