package main

import (
	"flag"
	"os"

	"github.com/provedb/provedb/internal/auth"
	"github.com/provedb/provedb/internal/conn"
	"github.com/provedb/provedb/internal/unit"
	"github.com/provedb/provedb/pkg"
)

func main() {
	cwd, _ := os.Getwd()

	unit_dir := flag.String("units", cwd, "directory with unit files")
	port := flag.Int("port", 7085, "listening port")
	username := flag.String("user", os.Getenv("PDB_USER"), "username for client connections")
	password := flag.String("pass", os.Getenv("PDB_PASS"), "password for client connections")
	debug := flag.Bool("debug", false, "show debug logs")

	flag.Parse()

	if *debug {
		pkg.SetLogLevel(pkg.LogLevelDebug)
	} else {
		pkg.SetLogLevel(pkg.LogLevelInfo)
	}

	store := unit.NewStore()
	if err := store.LoadDir(*unit_dir); err != nil {
		pkg.FatalLog(err)
	}

	var users []*auth.User
	if *username != "" {
		users = append(users, auth.NewUser(*username, *password, auth.UserRoleReadOnly))
	}

	conn.NewServer(store, users).Listen(*port)
}
