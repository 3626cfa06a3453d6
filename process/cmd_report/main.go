package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"pfa/process/report"
)

func main() {
	email := flag.String("email", "", "email of the user to report for")
	month := flag.String("month", time.Now().UTC().Format("2006-01"), "month to report (YYYY-MM)")
	list := flag.Bool("list", false, "list matching transactions")
	flag.Parse()

	if *email == "" {
		fmt.Fprintln(os.Stderr, "-email is required")
		os.Exit(2)
	}
	gdb, err := report.OpenDB()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v; export DB_DSN and retry\n", err)
		os.Exit(2)
	}
	m, err := report.Build(gdb, *email, *month, *list)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	report.Write(os.Stdout, m)
}
