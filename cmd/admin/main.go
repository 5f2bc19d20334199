// 运维命令：首个管理员只能从这里提权
//
//	admin promote <email>
//	admin seller  <email>
//	admin list
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"outdoor-furniture/internal/bootstrap"
	"outdoor-furniture/internal/core/config"
	"outdoor-furniture/internal/core/logger"
	"outdoor-furniture/internal/domain"
	"outdoor-furniture/internal/service"
)

var errUsage = errors.New("usage: admin [-config path] promote|seller|list [email]")

func main() {
	_ = godotenv.Load()
	cfgPath := flag.String("config", os.Getenv("CONFIG_PATH"), "config file")
	flag.Parse()

	cfg := config.Load(*cfgPath)
	log, cleanup := logger.New(logger.Options{Level: cfg.Log.Level, JSON: cfg.Log.JSON})
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), bootstrap.ConnectTimeout)
	defer cancel()
	st, err := bootstrap.OpenStore(ctx, cfg.DB, log, false)
	if err != nil {
		log.Fatal("store open", zap.Error(err))
	}
	defer func() { _ = st.Close(context.Background()) }()

	if err := run(ctx, flag.Args(), service.NewDirectory(st.Users, log), os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		cleanup()
		os.Exit(2)
	}
}

func run(ctx context.Context, args []string, dir *service.Directory, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	switch args[0] {
	case "list":
		us, err := dir.List(ctx)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tEMAIL\tROLE\tCATEGORY")
		for _, u := range us {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", u.ID, u.Email, u.Role, u.Category)
		}
		return tw.Flush()

	case "promote", "seller":
		if len(args) != 2 {
			return errUsage
		}
		email := args[1]
		var (
			ok  bool
			err error
		)
		if args[0] == "promote" {
			ok, err = dir.PromoteEmailToAdmin(ctx, email)
		} else {
			ok, err = dir.SetCategory(ctx, email, domain.CategorySeller)
		}
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("no user with email %q", email)
		}
		fmt.Fprintf(out, "%s: %s updated\n", args[0], email)
		return nil
	}
	return errUsage
}
