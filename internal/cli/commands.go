package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/idilsaglam/adminpanel/internal/app"
	"github.com/idilsaglam/adminpanel/internal/session"
	"github.com/idilsaglam/adminpanel/internal/ui"
)

// EnvPassword supplies the password for login and register.
const EnvPassword = "ADMINPANEL_PASSWORD"

func doTUI(ctx context.Context, e *env, _ []string) int {
	if err := e.opt.RunTUI(ctx, e.app); err != nil {
		return e.fail(err)
	}
	return 0
}

// -------------- session ----------------

func doLogin(ctx context.Context, e *env, args []string) int {
	fs := e.flagSet("login")
	pass := fs.String("password", "", "password (default $"+EnvPassword+" or stdin)")
	pos, err := parseFlags(fs, args)
	if err != nil || len(pos) != 1 {
		return e.usage("login <username> [--password p]")
	}
	password, err := e.password(*pass)
	if err != nil {
		return e.fail(err)
	}
	if password == "" {
		return e.usage("login <username> [--password p]")
	}

	if err := e.app.Login(ctx, pos[0], password); err != nil {
		return e.fail(err)
	}
	ui.OK(e.out, app.MsgLoginOK)
	ui.Hint(e.out, "session stored in "+e.location)
	return 0
}

func doRegister(ctx context.Context, e *env, args []string) int {
	fs := e.flagSet("register")
	pass := fs.String("password", "", "password (default $"+EnvPassword+" or stdin)")
	pos, err := parseFlags(fs, args)
	if err != nil || len(pos) != 2 {
		return e.usage("register <username> <email> [--password p]")
	}
	password, err := e.password(*pass)
	if err != nil {
		return e.fail(err)
	}
	if password == "" {
		return e.usage("register <username> <email> [--password p]")
	}

	if err := e.app.Register(ctx, pos[0], password, pos[1]); err != nil {
		return e.fail(err)
	}
	ui.OK(e.out, app.MsgRegisterOK)
	return 0
}

// password picks the flag, then the environment, then stdin. A terminal
// gets a prompt and no echo; anything else is read as one line.
func (e *env) password(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if v := e.opt.Getenv(EnvPassword); v != "" {
		return v, nil
	}
	if f, ok := e.opt.Stdin.(*os.File); ok && e.opt.IsTerminal(f.Fd()) {
		fmt.Fprint(e.err, "Password: ")
		b, err := e.opt.ReadPassword(int(f.Fd()))
		fmt.Fprintln(e.err)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}
	line, err := bufio.NewReader(e.opt.Stdin).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func doLogout(ctx context.Context, e *env, _ []string) int {
	was, src := e.sess.Authenticated(), e.sess.Source()
	if err := e.app.Logout(ctx); err != nil {
		return e.fail(err)
	}
	if !was {
		ui.OK(e.out, "already logged out")
		return 0
	}
	ui.OK(e.out, "logged out")
	if src == session.SourceEnv {
		ui.Hint(e.out, "the token still comes from $ADMINPANEL_TOKEN; unset it to stay logged out")
	}
	return 0
}

func doStatus(_ context.Context, e *env, _ []string) int {
	user, source := "-", "-"
	if u := e.sess.CurrentUser(); u != nil {
		user = fmt.Sprintf("%s (%s)", u.Username, u.ID)
	}
	if e.sess.Authenticated() {
		source = e.sess.Source()
	}
	lines := []string{ui.Current().Title.Render("Status"), ""}
	lines = append(lines, ui.KeyValues([][2]string{
		{"api", e.opt.Config.API.BaseURL},
		{"session", e.location},
		{"logged in", strconv.FormatBool(e.sess.Authenticated())},
		{"token from", source},
		{"user", user},
	})...)
	ui.Panel(e.out, lines)
	return 0
}

func doWhoami(_ context.Context, e *env, _ []string) int {
	if !e.sess.Authenticated() {
		return e.fail(app.ErrNotLoggedIn)
	}
	pairs := [][2]string{}
	if u := e.sess.CurrentUser(); u != nil {
		pairs = append(pairs, [2]string{"user", u.Username}, [2]string{"id", u.ID})
	}
	pairs = append(pairs, [2]string{"source", e.sess.Source()})

	tok := e.sess.Token()
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok, claims); err != nil {
		// opaque token
		pairs = append(pairs, [2]string{"token", maskToken(tok)})
	} else {
		pairs = append(pairs, [2]string{"token", "JWT " + maskToken(tok)})
		pairs = append(pairs, claimPairs(claims)...)
	}

	lines := []string{ui.Current().Title.Render("Who am I"), ""}
	lines = append(lines, ui.KeyValues(pairs)...)
	ui.Panel(e.out, lines)
	return 0
}

func maskToken(tok string) string {
	if len(tok) <= 12 {
		return strings.Repeat("*", len(tok))
	}
	return tok[:6] + "..." + tok[len(tok)-4:]
}

func claimPairs(c jwt.MapClaims) [][2]string {
	var out [][2]string
	if sub, err := c.GetSubject(); err == nil && sub != "" {
		out = append(out, [2]string{"subject", sub})
	}
	if iss, err := c.GetIssuer(); err == nil && iss != "" {
		out = append(out, [2]string{"issuer", iss})
	}
	if iat, err := c.GetIssuedAt(); err == nil && iat != nil {
		out = append(out, [2]string{"issued", iat.Local().Format(time.RFC3339)})
	}
	if exp, err := c.GetExpirationTime(); err == nil && exp != nil {
		v := exp.Local().Format(time.RFC3339)
		if exp.Before(time.Now()) {
			v += " (expired)"
		}
		out = append(out, [2]string{"expires", v})
	}
	known := map[string]bool{"sub": true, "iss": true, "iat": true, "exp": true}
	var rest []string
	for k := range c {
		if !known[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	for _, k := range rest {
		out = append(out, [2]string{k, fmt.Sprint(c[k])})
	}
	return out
}

// -------------- browse ----------------

// show navigates to page and reports a loader failure as an error.
func (e *env) show(ctx context.Context, page app.Page) error {
	if !e.app.Authenticated() {
		return app.ErrNotLoggedIn
	}
	e.app.DismissMessage(page)
	e.app.Navigate(ctx, page)
	if m, ok := e.app.Message(page); ok && m.Kind == app.KindError {
		return errors.New(m.Text)
	}
	return nil
}

func doDashboard(ctx context.Context, e *env, _ []string) int {
	if err := e.show(ctx, app.PageDashboard); err != nil {
		return e.fail(err)
	}
	s, _ := e.app.Stats()
	t := ui.Current()
	lines := []string{t.Title.Render("Dashboard"), ""}
	lines = append(lines, ui.KeyValues([][2]string{
		{"Total Users", strconv.Itoa(s.Users)},
		{"Total Items", strconv.Itoa(s.Items)},
	})...)
	if u := e.app.CurrentUser(); u != nil {
		lines = append(lines, "", t.Muted.Render("signed in as "+u.Username))
	}
	ui.Panel(e.out, lines)
	return 0
}

func doUsers(ctx context.Context, e *env, _ []string) int {
	if err := e.show(ctx, app.PageUsers); err != nil {
		return e.fail(err)
	}
	fmt.Fprintln(e.out, usersTable(e.app.Users()))
	return 0
}

func doItems(ctx context.Context, e *env, _ []string) int {
	if err := e.show(ctx, app.PageItems); err != nil {
		return e.fail(err)
	}
	fmt.Fprintln(e.out, itemsTable(e.app.Items()))
	return 0
}

func usersTable(users []app.UserRow) string {
	rows := make([][]string, 0, len(users))
	for _, u := range users {
		rows = append(rows, []string{u.ID, u.Username, u.Email, u.Created})
	}
	return ui.Table([]string{"ID", "Username", "Email", "Created"}, rows)
}

func itemsTable(items []app.ItemRow) string {
	rows := make([][]string, 0, len(items))
	for _, it := range items {
		rows = append(rows, []string{it.ID, ui.Truncate(it.Name, 30), ui.Truncate(it.Description, 40), it.Price, it.Created})
	}
	return ui.Table([]string{"ID", "Name", "Description", "Price", "Created"}, rows)
}

func doUser(ctx context.Context, e *env, args []string) int {
	if len(args) != 1 {
		return e.usage("user <id>")
	}
	u, err := e.app.User(ctx, args[0])
	if err != nil {
		return e.fail(err)
	}
	role := u.Role
	if role == "" {
		role = "-"
	}
	lines := []string{ui.Current().Title.Render(u.Username), ""}
	lines = append(lines, ui.KeyValues([][2]string{
		{"ID", u.ID},
		{"Email", u.Email},
		{"Role", role},
		{"Created", u.CreatedAt.Local().Format(app.DateLayout)},
	})...)
	ui.Panel(e.out, lines)
	return 0
}

func doItem(ctx context.Context, e *env, args []string) int {
	if len(args) != 1 {
		return e.usage("item <id>")
	}
	it, err := e.app.Item(ctx, args[0])
	if err != nil {
		return e.fail(err)
	}
	desc := it.Description
	if desc == "" {
		desc = "-"
	}
	lines := []string{ui.Current().Title.Render(it.Name), ""}
	lines = append(lines, ui.KeyValues([][2]string{
		{"ID", it.ID},
		{"Price", it.Price},
		{"Description", desc},
		{"Created", it.Created},
	})...)
	ui.Panel(e.out, lines)
	return 0
}

func doSearch(ctx context.Context, e *env, args []string) int {
	fs := e.flagSet("search")
	kind := fs.String("type", "", "restrict to users or items")
	pos, err := parseFlags(fs, args)
	if err != nil || len(pos) == 0 {
		return e.usage("search <query> [--type users|items]")
	}
	switch *kind {
	case "", "users", "items":
	default:
		ui.Fail(e.err, "search: --type must be users or items, got "+*kind)
		return 2
	}

	users, items, err := e.app.Search(ctx, strings.Join(pos, " "), *kind)
	if err != nil {
		return e.fail(err)
	}
	t := ui.Current()
	if *kind != "items" {
		fmt.Fprintln(e.out, t.Accent.Render(fmt.Sprintf("Users (%d)", len(users))))
		fmt.Fprintln(e.out, usersTable(users))
	}
	if *kind != "users" {
		fmt.Fprintln(e.out, t.Accent.Render(fmt.Sprintf("Items (%d)", len(items))))
		fmt.Fprintln(e.out, itemsTable(items))
	}
	return 0
}

func doStats(ctx context.Context, e *env, args []string) int {
	fs := e.flagSet("stats")
	refresh := fs.Bool("refresh", false, "recompute before reading")
	pos, err := parseFlags(fs, args)
	if err != nil || len(pos) != 0 {
		return e.usage("stats [--refresh]")
	}
	s, err := e.app.Analytics(ctx, *refresh)
	if err != nil {
		return e.fail(err)
	}
	t := ui.Current()
	lines := []string{t.Title.Render("Analytics"), ""}
	lines = append(lines, ui.KeyValues([][2]string{
		{"Users", strconv.Itoa(s.TotalUsers)},
		{"Items", strconv.Itoa(s.TotalItems)},
		{"Categories", strconv.Itoa(s.TotalCategories)},
		{"Tags", strconv.Itoa(s.TotalTags)},
		{"Updated", s.UpdatedAt.Local().Format(app.DateLayout + " 15:04")},
	})...)
	if len(s.RecentActivities) > 0 {
		lines = append(lines, "", t.Accent.Render("Recent activity"))
		for _, a := range s.RecentActivities {
			lines = append(lines, t.Muted.Render("• ")+a)
		}
	}
	ui.Panel(e.out, lines)
	return 0
}

func doPing(ctx context.Context, e *env, _ []string) int {
	info, err := e.app.Ping(ctx)
	if err != nil {
		return e.fail(err)
	}
	ui.OK(e.out, fmt.Sprintf("%s %s is up at %s", info.Name, info.Version, e.opt.Config.API.BaseURL))
	return 0
}

func doAudit(ctx context.Context, e *env, args []string) int {
	fs := e.flagSet("audit")
	limit := fs.Int("limit", 0, "entries to show (backend default 50)")
	pos, err := parseFlags(fs, args)
	if err != nil || len(pos) != 0 || *limit < 0 {
		return e.usage("audit [--limit n]")
	}
	logs, err := e.app.AuditLogs(ctx, *limit)
	if err != nil {
		return e.fail(err)
	}
	rows := make([][]string, 0, len(logs))
	for _, l := range logs {
		rows = append(rows, []string{l.When, l.Action, l.Entity + " " + l.EntityID, l.UserID, ui.Truncate(l.Details, 40)})
	}
	fmt.Fprintln(e.out, ui.Table([]string{"When", "Action", "Entity", "User", "Details"}, rows))
	return 0
}

func doTagged(ctx context.Context, e *env, args []string) int {
	if len(args) != 1 {
		return e.usage("tagged <tag-id>")
	}
	items, err := e.app.TagItems(ctx, args[0])
	if err != nil {
		return e.fail(err)
	}
	fmt.Fprintln(e.out, itemsTable(items))
	return 0
}

// -------------- items ----------------

func doTag(ctx context.Context, e *env, args []string) int {
	if len(args) == 0 {
		return e.usage("tag <name...>")
	}
	t, err := e.app.CreateTag(ctx, strings.Join(args, " "))
	if err != nil {
		return e.fail(err)
	}
	ui.OK(e.out, fmt.Sprintf("tag %q created (id %s)", t.Name, t.ID))
	return 0
}

func doAdd(ctx context.Context, e *env, args []string) int {
	if len(args) < 2 {
		return e.usage("add <name> <price> [description...]")
	}
	form := app.ItemForm{
		Name:        strings.TrimSpace(args[0]),
		Price:       args[1],
		Description: strings.Join(args[2:], " "),
	}
	if form.Name == "" {
		ui.Fail(e.err, "add: empty name")
		return 2
	}
	if err := e.app.CreateItem(ctx, form); err != nil {
		return e.fail(err)
	}
	ui.OK(e.out, app.MsgItemAdded)
	return 0
}

func doUpdate(ctx context.Context, e *env, args []string) int {
	if len(args) < 3 {
		return e.usage("update <id> <name> <price> [description...]")
	}
	form := app.ItemForm{
		ID:          args[0],
		Name:        strings.TrimSpace(args[1]),
		Price:       args[2],
		Description: strings.Join(args[3:], " "),
	}
	if form.Name == "" {
		ui.Fail(e.err, "update: empty name")
		return 2
	}
	if err := e.app.UpdateItem(ctx, form); err != nil {
		return e.fail(err)
	}
	ui.OK(e.out, app.MsgItemSaved)
	return 0
}

func doRemove(ctx context.Context, e *env, args []string) int {
	if len(args) != 1 {
		return e.usage("rm <id>")
	}
	if err := e.app.DeleteItem(ctx, args[0]); err != nil {
		return e.fail(err)
	}
	ui.OK(e.out, app.MsgItemGone)
	return 0
}
