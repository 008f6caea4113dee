package main

import (
	"bufio"
	"flag"
	"os"
	"strings"

	"github.com/jmoiron/sqlx"
	"gitlab.com/dirk.krummacker/persons-service/internal/config"
	"gitlab.com/dirk.krummacker/persons-service/internal/logging"
	"gitlab.com/dirk.krummacker/persons-service/internal/store"
	"go.uber.org/zap"
)

// Usage example on the command line:
// > DBHOST=localhost DBUSER=dirk DBPWD=bullo92 go run main.go -file=../../scripts/database.sql
func main() {
	filePtr := flag.String("file", "database.sql", "the sql file to execute")
	dbNamePtr := flag.String("db", config.GetEnv("DBNAME", "test"), "the database to run the file against")
	flag.Parse()

	logger, err := logging.New(os.Getenv("LOG_MODE"))
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	sqlDB, err := store.CreateDatabase(os.Getenv("DBUSER"), os.Getenv("DBPWD"), os.Getenv("DBHOST"), *dbNamePtr)
	if err != nil {
		logger.Fatal("could not open database", zap.Error(err))
	}
	db := sqlx.NewDb(sqlDB, "mysql")
	defer db.Close()

	readFile, err := os.Open(*filePtr) // nosemgrep
	if err != nil {
		logger.Fatal("could not open sql file", zap.String("file", *filePtr), zap.Error(err))
	}
	defer readFile.Close()

	// Statements may span several lines; each one ends with a semicolon.
	fileScanner := bufio.NewScanner(readFile)
	fileScanner.Split(bufio.ScanLines)
	builder := strings.Builder{}
	executed := 0
	for fileScanner.Scan() {
		line := strings.TrimSpace(fileScanner.Text())
		if line == "" || strings.HasPrefix(line, "--") {
			continue
		}
		builder.WriteString(line)
		builder.WriteString(" ")
		if strings.HasSuffix(line, ";") {
			db.MustExec(builder.String())
			builder = strings.Builder{}
			executed++
		}
	}
	if err := fileScanner.Err(); err != nil {
		logger.Fatal("could not read sql file", zap.Error(err))
	}
	logger.Info("migration finished", zap.String("file", *filePtr), zap.Int("statements", executed))
}
