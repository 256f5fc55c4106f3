// Command homefix is the terminal front end for the HomeFix marketplace API:
// session management, registration, profile editing and the admin user
// toggles, all over the shared authenticated client.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/ManuMarcos/Frontend-usuarios-squad-06-uade/internal/address"
	"github.com/ManuMarcos/Frontend-usuarios-squad-06-uade/internal/client"
	"github.com/ManuMarcos/Frontend-usuarios-squad-06-uade/internal/config"
	"github.com/ManuMarcos/Frontend-usuarios-squad-06-uade/internal/domain"
	"github.com/ManuMarcos/Frontend-usuarios-squad-06-uade/internal/profile"
	"github.com/ManuMarcos/Frontend-usuarios-squad-06-uade/internal/session"
	apperrors "github.com/ManuMarcos/Frontend-usuarios-squad-06-uade/pkg/errors"
	"github.com/ManuMarcos/Frontend-usuarios-squad-06-uade/pkg/logger"
)

const usage = `Usage: homefix <command> [flags]

Commands:
  login            -email -password
  logout
  whoami
  register         -role -email -password -first-name -last-name -dni -phone -address
  forgot-password  -email
  reset-password   -token -password | -user-id -password
  change-password  -old -new
  profile show
  profile edit     [-first-name ...] [-last-name ...] [-email ...] [-phone ...]
                   [-set-address i:field=value ...] [-add-address] [-remove-address i]
  address list
  address add      -address street,number,floor,apartment,city,state
  address remove   -index
  users list
  users activate   -id
  users deactivate -id
  upload-photo     -file -content-type
`

// cliNavigator plays the part of the front end's location. Forced redirects
// from the auth transport surface as a printed notice instead of a page load.
type cliNavigator struct {
	path string
}

func (n *cliNavigator) CurrentPath() string { return n.path }

func (n *cliNavigator) Navigate(path string) {
	n.path = path
	reason := "expired"
	if i := strings.Index(path, "?m="); i >= 0 {
		reason = path[i+len("?m="):]
	}
	switch reason {
	case "inactive":
		fmt.Fprintln(os.Stderr, "Your account has been disabled. Please contact support.")
	default:
		fmt.Fprintln(os.Stderr, "Your session has expired. Please log in again.")
	}
}

type app struct {
	client *client.Client
	store  *session.Store
	nav    *cliNavigator
	log    *slog.Logger
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "homefix: %v\n", err)
		os.Exit(1)
	}

	log := logger.New("homefix", cfg.LogLevel)

	store, err := session.NewStore(cfg.StateDir, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "homefix: %v\n", err)
		os.Exit(1)
	}

	nav := &cliNavigator{path: "/"}
	c, err := client.New(client.Config{
		BaseURL:         cfg.APIBase,
		PublicAssetBase: cfg.PublicAssetBase,
		Timeout:         cfg.HTTPTimeout,
		EnableBreaker:   cfg.BreakerEnabled,
	}, store, nav, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "homefix: %v\n", err)
		os.Exit(1)
	}

	a := &app{client: c, store: store, nav: nav, log: log}
	if err := a.run(context.Background(), os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "homefix: %s\n", renderError(err))
		os.Exit(1)
	}
}

func (a *app) run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "login":
		return a.cmdLogin(ctx, args)
	case "logout":
		return a.client.Logout()
	case "whoami":
		return a.cmdWhoami()
	case "register":
		return a.cmdRegister(ctx, args)
	case "forgot-password":
		return a.cmdForgotPassword(ctx, args)
	case "reset-password":
		return a.cmdResetPassword(ctx, args)
	case "change-password":
		return a.cmdChangePassword(ctx, args)
	case "profile":
		return a.cmdProfile(ctx, args)
	case "address":
		return a.cmdAddress(ctx, args)
	case "users":
		return a.cmdUsers(ctx, args)
	case "upload-photo":
		return a.cmdUploadPhoto(ctx, args)
	case "help", "-h", "--help":
		fmt.Print(usage)
		return nil
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func (a *app) cmdLogin(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	_ = fs.Parse(args)

	// The login screen is the one place an auth rejection must not bounce
	// away from.
	a.nav.path = "/login"

	sess, err := a.client.Login(ctx, *email, *password)
	if err != nil {
		return err
	}
	fmt.Printf("Logged in as %s (%s)\n", sess.DisplayName, sess.Role)
	fmt.Printf("Home: %s\n", domain.HomeRoute(sess.Role))
	return nil
}

func (a *app) cmdWhoami() error {
	sess, ok := a.store.Current()
	if !ok {
		return apperrors.Unauthorized("not logged in")
	}
	fmt.Printf("%s <%s>\nRole: %s\n", sess.DisplayName, sess.Email, sess.Role)
	if exp, ok := a.store.ExpiresAt(); ok {
		fmt.Printf("Token expires: %s\n", exp.Format("2006-01-02 15:04:05 MST"))
	}
	return nil
}

func (a *app) cmdRegister(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	role := fs.String("role", "customer", "customer or contractor")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	firstName := fs.String("first-name", "", "first name")
	lastName := fs.String("last-name", "", "last name")
	dni := fs.String("dni", "", "national ID number")
	phone := fs.String("phone", "", "phone number")
	addr := fs.String("address", "", "address as street,number,floor,apartment,city,state")
	_ = fs.Parse(args)

	input := client.RegisterInput{
		Role:        domain.UIRole(*role),
		FirstName:   *firstName,
		LastName:    *lastName,
		Email:       *email,
		DNI:         *dni,
		PhoneNumber: *phone,
		Password:    *password,
	}
	if *addr != "" {
		rec, err := parseAddressFlag(*addr)
		if err != nil {
			return err
		}
		input.Addresses = []address.Record{rec}
	}

	msg, err := a.client.Register(ctx, input)
	if err != nil {
		return err
	}
	if msg == "" {
		msg = "account created"
	}
	fmt.Println(msg)
	return nil
}

func parseAddressFlag(s string) (address.Record, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 6 {
		return address.Record{}, apperrors.InvalidInput(
			"address must have 6 comma-separated parts: street,number,floor,apartment,city,state")
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return address.Record{
		Street:    parts[0],
		Number:    parts[1],
		Floor:     parts[2],
		Apartment: parts[3],
		City:      parts[4],
		State:     parts[5],
	}, nil
}

func (a *app) cmdForgotPassword(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("forgot-password", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	_ = fs.Parse(args)

	if err := a.client.ForgotPassword(ctx, *email); err != nil {
		return err
	}
	fmt.Println("If the email exists, reset instructions were sent.")
	return nil
}

func (a *app) cmdResetPassword(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("reset-password", flag.ExitOnError)
	token := fs.String("token", "", "reset token from the email")
	userID := fs.String("user-id", "", "user ID for the parameterized reset")
	password := fs.String("password", "", "new password")
	_ = fs.Parse(args)

	var err error
	switch {
	case *token != "":
		err = a.client.ResetPassword(ctx, *token, *password)
	case *userID != "":
		err = a.client.ResetUserPassword(ctx, *userID, *password)
	default:
		return apperrors.InvalidInput("either -token or -user-id is required")
	}
	if err != nil {
		return err
	}
	fmt.Println("Password updated.")
	return nil
}

func (a *app) cmdChangePassword(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("change-password", flag.ExitOnError)
	oldPassword := fs.String("old", "", "current password")
	newPassword := fs.String("new", "", "new password")
	_ = fs.Parse(args)

	sess, ok := a.store.Current()
	if !ok {
		return apperrors.Unauthorized("not logged in")
	}
	if err := a.client.ChangePassword(ctx, sess.Email, *oldPassword, *newPassword); err != nil {
		return err
	}
	fmt.Println("Password changed.")
	return nil
}

func (a *app) cmdProfile(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return apperrors.InvalidInput("profile needs a subcommand: show or edit")
	}
	switch args[0] {
	case "show":
		return a.cmdProfileShow(ctx)
	case "edit":
		return a.cmdProfileEdit(ctx, args[1:])
	default:
		return fmt.Errorf("unknown profile subcommand %q", args[0])
	}
}

func (a *app) loadOwnProfile(ctx context.Context) (*domain.User, error) {
	sess, ok := a.store.Current()
	if !ok {
		return nil, apperrors.Unauthorized("not logged in")
	}
	return a.client.GetUser(ctx, sess.ID)
}

func (a *app) cmdProfileShow(ctx context.Context) error {
	user, err := a.loadOwnProfile(ctx)
	if err != nil {
		return err
	}
	printUser(user)
	return nil
}

// multiFlag collects repeated occurrences of a string flag.
type multiFlag []string

func (m *multiFlag) String() string { return strings.Join(*m, ",") }

func (m *multiFlag) Set(v string) error {
	*m = append(*m, v)
	return nil
}

func (a *app) cmdProfileEdit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("profile edit", flag.ExitOnError)
	firstName := fs.String("first-name", "", "new first name")
	lastName := fs.String("last-name", "", "new last name")
	email := fs.String("email", "", "new email")
	phone := fs.String("phone", "", "new phone number")
	addAddress := fs.Bool("add-address", false, "append an empty address slot")
	removeAddress := fs.Int("remove-address", -1, "remove the address slot at this index")
	var setAddress multiFlag
	fs.Var(&setAddress, "set-address", "address edit as index:field=value, repeatable")
	_ = fs.Parse(args)

	user, err := a.loadOwnProfile(ctx)
	if err != nil {
		return err
	}

	ed := profile.NewEditor(*user, a.client, a.store, a.log)
	if err := ed.BeginEdit(); err != nil {
		return err
	}

	if *firstName != "" {
		_ = ed.SetFirstName(*firstName)
	}
	if *lastName != "" {
		_ = ed.SetLastName(*lastName)
	}
	if *email != "" {
		_ = ed.SetEmail(*email)
	}
	if *phone != "" {
		_ = ed.SetPhoneNumber(*phone)
	}
	if *addAddress {
		if _, err := ed.AddAddress(); err != nil {
			return err
		}
	}
	for _, edit := range setAddress {
		idx, field, value, err := parseSetAddress(edit)
		if err != nil {
			return err
		}
		if err := ed.SetAddressField(idx, field, value); err != nil {
			return err
		}
	}
	if *removeAddress >= 0 {
		if err := ed.RemoveAddress(*removeAddress); err != nil {
			return err
		}
	}

	if !ed.Dirty() {
		fmt.Println("Nothing to change.")
		return ed.Cancel()
	}

	msg, err := ed.Save(ctx)
	if err != nil {
		return err
	}
	if msg == "" {
		msg = "profile saved"
	}
	fmt.Println(msg)
	return nil
}

func parseSetAddress(arg string) (int, string, string, error) {
	colon := strings.Index(arg, ":")
	eq := strings.Index(arg, "=")
	if colon < 0 || eq < colon {
		return 0, "", "", apperrors.InvalidInput("set-address must look like index:field=value")
	}
	idx, err := strconv.Atoi(arg[:colon])
	if err != nil {
		return 0, "", "", apperrors.InvalidInput("set-address index must be a number")
	}
	return idx, arg[colon+1 : eq], arg[eq+1:], nil
}

func (a *app) cmdAddress(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return apperrors.InvalidInput("address needs a subcommand: list, add or remove")
	}
	switch args[0] {
	case "list":
		user, err := a.loadOwnProfile(ctx)
		if err != nil {
			return err
		}
		if len(user.Addresses) == 0 {
			fmt.Println("No addresses on file.")
			return nil
		}
		for i, rec := range user.Addresses {
			fmt.Printf("%d\t%s\n", i, rec.Format())
		}
		return nil
	case "add":
		fs := flag.NewFlagSet("address add", flag.ExitOnError)
		addr := fs.String("address", "", "address as street,number,floor,apartment,city,state")
		_ = fs.Parse(args[1:])
		if *addr == "" {
			return apperrors.InvalidInput("address is required")
		}
		rec, err := parseAddressFlag(*addr)
		if err != nil {
			return err
		}
		return a.editAddresses(ctx, func(ed *profile.Editor) error {
			idx, err := ed.AddAddress()
			if err != nil {
				return err
			}
			for field, value := range map[string]string{
				"street": rec.Street, "number": rec.Number, "floor": rec.Floor,
				"apartment": rec.Apartment, "city": rec.City, "state": rec.State,
			} {
				if err := ed.SetAddressField(idx, field, value); err != nil {
					return err
				}
			}
			return nil
		})
	case "remove":
		fs := flag.NewFlagSet("address remove", flag.ExitOnError)
		index := fs.Int("index", -1, "address index from 'address list'")
		_ = fs.Parse(args[1:])
		if *index < 0 {
			return apperrors.InvalidInput("index is required")
		}
		return a.editAddresses(ctx, func(ed *profile.Editor) error {
			return ed.RemoveAddress(*index)
		})
	default:
		return fmt.Errorf("unknown address subcommand %q", args[0])
	}
}

// editAddresses runs one address mutation through the profile editor so the
// whole-list patch and session merge semantics apply.
func (a *app) editAddresses(ctx context.Context, mutate func(*profile.Editor) error) error {
	user, err := a.loadOwnProfile(ctx)
	if err != nil {
		return err
	}

	ed := profile.NewEditor(*user, a.client, a.store, a.log)
	if err := ed.BeginEdit(); err != nil {
		return err
	}
	if err := mutate(ed); err != nil {
		return err
	}

	msg, err := ed.Save(ctx)
	if err != nil {
		return err
	}
	if msg == "" {
		msg = "addresses updated"
	}
	fmt.Println(msg)
	return nil
}

func (a *app) cmdUsers(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return apperrors.InvalidInput("users needs a subcommand: list, activate or deactivate")
	}
	switch args[0] {
	case "list":
		users, err := a.client.ListUsers(ctx)
		if err != nil {
			return err
		}
		for _, u := range users {
			status := "active"
			if !u.Active {
				status = "disabled"
			}
			fmt.Printf("%s\t%s\t%s\t%s\t%s\n", u.ID, u.Email, u.DisplayName(), u.UIRole(), status)
		}
		return nil
	case "activate", "deactivate":
		fs := flag.NewFlagSet("users "+args[0], flag.ExitOnError)
		id := fs.String("id", "", "user ID")
		_ = fs.Parse(args[1:])
		if err := a.client.SetActive(ctx, *id, args[0] == "activate"); err != nil {
			return err
		}
		fmt.Printf("User %s %sd.\n", *id, args[0])
		return nil
	default:
		return fmt.Errorf("unknown users subcommand %q", args[0])
	}
}

func (a *app) cmdUploadPhoto(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("upload-photo", flag.ExitOnError)
	file := fs.String("file", "", "path to the image file")
	contentType := fs.String("content-type", "image/jpeg", "image content type")
	_ = fs.Parse(args)

	sess, ok := a.store.Current()
	if !ok {
		return apperrors.Unauthorized("not logged in")
	}
	if *file == "" {
		return apperrors.InvalidInput("file path is required")
	}

	f, err := os.Open(*file)
	if err != nil {
		return fmt.Errorf("open image: %w", err)
	}
	defer func() { _ = f.Close() }()

	url, err := a.client.UploadProfileImage(ctx, sess.ID, *contentType, f)
	if err != nil {
		return err
	}

	v := url
	if _, err := a.client.UpdateUser(ctx, sess.ID, domain.UserPatch{ProfileImageURL: &v}); err != nil {
		return err
	}
	fmt.Println(url)
	return nil
}

func printUser(u *domain.User) {
	fmt.Printf("ID:     %s\n", u.ID)
	fmt.Printf("Name:   %s\n", u.DisplayName())
	fmt.Printf("Email:  %s\n", u.Email)
	fmt.Printf("DNI:    %s\n", u.DNI)
	fmt.Printf("Phone:  %s\n", u.PhoneNumber)
	fmt.Printf("Role:   %s\n", u.UIRole())
	if u.ProfileImageURL != "" {
		fmt.Printf("Photo:  %s\n", u.ProfileImageURL)
	}
	for i, rec := range u.Addresses {
		fmt.Printf("Address %d: %s\n", i+1, rec.Format())
	}
}

// renderError maps the error taxonomy to the short messages the screens show.
func renderError(err error) string {
	switch {
	case errors.Is(err, apperrors.ErrInactiveAccount):
		return "account disabled: " + errMessage(err)
	case errors.Is(err, apperrors.ErrEmailTaken):
		return errMessage(err)
	case errors.Is(err, apperrors.ErrUnreachable):
		return "cannot reach the HomeFix API: " + errMessage(err)
	default:
		return errMessage(err)
	}
}

func errMessage(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return err.Error()
}
