package main

import (
	"bytes"
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/wansing/blogr/api"
	"github.com/wansing/blogr/auth"
	"github.com/wansing/blogr/config"
	"github.com/wansing/blogr/core"
	"github.com/wansing/blogr/sqldb"
	"github.com/wansing/blogr/sqldb/mysql"
	"github.com/wansing/blogr/sqldb/postgres"
	"github.com/wansing/blogr/sqldb/sqlite3"
	"github.com/xo/dburl"
	"golang.org/x/crypto/ssh/terminal"
)

var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
}

func main() {

	cfg, err := config.Load("config/blogr.ini", ".env")
	if err != nil {
		log.Fatalln(err)
	}

	var dbArg string // is in both FlagSets

	// default FlagSet

	// Your reverse proxy must not strip the prefix. So if you're using nginx, the "proxy_pass" value should not end with a slash.
	flag.StringVar(&cfg.Base, "base", cfg.Base, "strip off this `prefix` from every HTTP request")
	// MySQL: collation should be utf8mb4_unicode_ci
	flag.StringVar(&dbArg, "db", cfg.DB, "sql database url, see github.com/xo/dburl")
	flag.StringVar(&cfg.Listen, "listen", cfg.Listen, "serve HTTP content at this `ip:port`")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "one of panic, fatal, error, warn, info, debug, trace")

	// init FlagSet

	var initFlags = flag.NewFlagSet("init", flag.ExitOnError)

	initFlags.StringVar(&dbArg, "db", cfg.DB, "sql database url, see github.com/xo/dburl") // copied from above
	var initInsert = initFlags.Bool("insert", false, "creates the given user or sets its password")
	var initSeed = initFlags.Bool("seed", false, "inserts a demo user with some posts, unless it exists")
	var email = initFlags.String("user", "", "specifies a user `email`")

	if len(os.Args) > 1 && os.Args[1] == "init" {
		initFlags.Parse(os.Args[2:])
	} else {
		flag.Parse()
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Fatalln(err)
	}
	log.SetLevel(level)

	// database

	dbURL, err := dburl.Parse(dbArg)
	if err != nil {
		log.Errorf("could not parse database url: %v", err)
		return
	}

	sqlDB, err := sql.Open(dbURL.Driver, dbURL.DSN)
	if err != nil {
		log.Errorf("could not open sql database: %v", err)
		return
	}

	defer func() {
		log.Info("closing database")
		sqlDB.Close()
	}()

	if err = sqlDB.Ping(); err != nil {
		log.Errorf("could not ping sql database: %v", err)
		return
	}

	log.WithField("driver", dbURL.Driver).Info("using database")

	// assemble stuff

	var sessionStore scs.Store
	switch dbURL.Driver {
	case string(sqldb.MySQL):
		sessionStore = mysql.NewSessionStore(sqlDB)
	case string(sqldb.Postgres):
		sessionStore = postgres.NewSessionStore(sqlDB)
	case string(sqldb.SQLite3):
		sessionStore = sqlite3.NewSessionStore(sqlDB)
	default:
		log.Errorf("unknown database backend: %s", dbURL.Driver)
		return
	}

	var dialect = sqldb.Dialect(dbURL.Driver)
	var users = sqldb.NewUserDB(sqlDB, dialect)
	var posts = sqldb.NewPostDB(sqlDB, dialect)

	// init

	if initFlags.Parsed() {
		switch {
		case *initInsert:
			if *email != "" {
				insertUser(users, *email)
			}
		case *initSeed:
			inserted, err := seed(context.Background(), users, posts, time.Now())
			switch {
			case err != nil:
				log.Errorf("error seeding: %v", err)
			case inserted:
				log.Infof("inserted demo user %s", seedEmail)
			default:
				log.Infof("demo user %s exists already", seedEmail)
			}
		}
		return
	}

	var secret = []byte(cfg.Secret)
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			log.Errorf("error generating secret: %v", err)
			return
		}
		log.Warnf("no secret configured, sessions won't survive a restart. Example: %s", base64.StdEncoding.EncodeToString(secret))
	}

	var srv = &api.Server{
		Lifecycle: core.NewLifecycle(posts, log),
		Resolver: &auth.Resolver{
			Sessions: auth.NewSessionManager(sessionStore, cfg.BasePath(), cfg.SessionLifetime, cfg.SessionIdleTimeout, cfg.CookieSecure),
			Signer:   &auth.Signer{Secret: secret},
			Users:    users,
			Log:      log,
		},
		Log:         log,
		CORSOrigins: cfg.CORSOrigins,
	}

	listen(api.StripPrefix(cfg.BasePath(), api.NewHandler(srv)), cfg.Listen)
}

func insertUser(users *sqldb.UserDB, email string) {

	email = strings.ToLower(strings.TrimSpace(email))

	fmt.Printf("password for user %s: ", email)
	pass1, err := terminal.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		log.Errorf("error reading password: %v", err)
		return
	}

	fmt.Printf("repeat password: ")
	pass2, err := terminal.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		log.Errorf("error reading password: %v", err)
		return
	}

	if !bytes.Equal(pass1, pass2) {
		log.Error("passwords don't match")
		return
	}

	hash, err := auth.HashPassword(string(pass1))
	if err != nil {
		log.Errorf("error hashing password: %v", err)
		return
	}

	var ctx = context.Background()

	user, err := users.GetUserByEmail(ctx, email)
	switch {
	case errors.Is(err, core.ErrNotFound):
		user = &core.User{
			ID:           uuid.New().String(),
			Email:        email,
			PasswordHash: hash,
			CreatedAt:    time.Now().UTC(),
		}
		if err := users.InsertUser(ctx, user); err != nil {
			log.Errorf("error creating user %s: %v", email, err)
		}
	case err != nil:
		log.Errorf("error getting user %s: %v", email, err)
	default:
		if err := users.SetPasswordHash(ctx, user.ID, hash); err != nil {
			log.Errorf("error setting password: %v", err)
		}
	}
}

func listen(handler http.Handler, addr string) {

	// listener and listen

	sigintChannel := make(chan os.Signal, 1)

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		log.Error(err)
		return
	}

	log.Infof("listening to %s", addr)

	httpSrv := &http.Server{
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		if err := httpSrv.Serve(listener); err != nil {

			// don't panic, we want a graceful shutdown
			if err != http.ErrServerClosed {
				log.Errorf("error listening: %v", err)
			}

			// ensure graceful shutdown
			sigintChannel <- os.Interrupt
		}
	}()

	// graceful shutdown

	signal.Notify(sigintChannel, os.Interrupt, syscall.SIGTERM) // SIGINT (Interrupt) or SIGTERM
	<-sigintChannel

	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(ctx); err != nil { // waits for running requests
		log.Errorf("error shutting down: %v", err)
	}
}
