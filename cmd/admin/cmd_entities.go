package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"astro-admin-go/internal/console"
	"astro-admin-go/internal/models"
	"astro-admin-go/internal/services"
	"astro-admin-go/internal/store"

	"github.com/spf13/cobra"
)

// lookupPageSize bounds the reference lists fetched to resolve slugs and
// tag names.
const lookupPageSize = 100

type entityFlags struct {
	page          int
	pageSize      int
	search        string
	category      string
	sortBy        string
	sortOrder     string
	createdAfter  string
	createdBefore string
	data          string
	tags          []string
}

func (f *entityFlags) params() models.ListParams {
	return models.ListParams{
		Page:          max(f.page, 1),
		PageSize:      f.pageSize,
		Search:        services.CleanSearchTerm(f.search),
		Category:      strings.TrimSpace(f.category),
		SortBy:        strings.TrimSpace(f.sortBy),
		SortOrder:     f.sortOrder,
		CreatedAfter:  strings.TrimSpace(f.createdAfter),
		CreatedBefore: strings.TrimSpace(f.createdBefore),
	}
}

func entitySlices() []string {
	return services.Slices
}

// newEntityCmd builds "<slice> list|get|create|update|patch|delete". The
// profile slice has a single record, so it only gets get, update and patch
// without an id.
func newEntityCmd(name string) *cobra.Command {
	parent := &cobra.Command{
		Use:   name,
		Short: fmt.Sprintf("Manage %s", name),
	}
	if name == services.SliceProfile {
		parent.AddCommand(
			newGetCmd(name, false),
			newWriteCmd(name, store.OpUpdate, false),
			newWriteCmd(name, store.OpPatch, false),
		)
		return parent
	}
	parent.AddCommand(
		newListCmd(name),
		newGetCmd(name, true),
		newWriteCmd(name, store.OpCreate, false),
		newWriteCmd(name, store.OpUpdate, true),
		newWriteCmd(name, store.OpPatch, true),
		newDeleteCmd(name),
	)
	if name == services.SliceArticles {
		parent.AddCommand(newThumbnailCmd())
	}
	return parent
}

func newListCmd(name string) *cobra.Command {
	flags := &entityFlags{}
	cmd := &cobra.Command{
		Use:   "list",
		Short: fmt.Sprintf("List one page of %s", name),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			params := flags.params()
			if params.PageSize < 1 {
				params.PageSize = cfg.DefaultPageSize
			}
			return runAction(cmd, name, store.Action{Op: store.OpList, Params: params}, nil)
		},
	}
	cmd.Flags().IntVar(&flags.page, "page", 1, "Page number")
	cmd.Flags().IntVar(&flags.pageSize, "page-size", 0, "Items per page (default DEFAULT_PAGE_SIZE)")
	cmd.Flags().StringVar(&flags.search, "search", "", "Search term")
	cmd.Flags().StringVar(&flags.category, "category", "", "Category filter")
	cmd.Flags().StringVar(&flags.sortBy, "sort-by", "", "Sort field")
	cmd.Flags().StringVar(&flags.sortOrder, "sort-order", "asc", "Sort order, asc or desc")
	cmd.Flags().StringVar(&flags.createdAfter, "created-after", "", "Only items created on or after this date")
	cmd.Flags().StringVar(&flags.createdBefore, "created-before", "", "Only items created on or before this date")
	return cmd
}

func newGetCmd(name string, withID bool) *cobra.Command {
	use, args := idArgs("get", withID)
	return &cobra.Command{
		Use:   use,
		Short: fmt.Sprintf("Show one record of %s", name),
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAction(cmd, name, store.Action{Op: store.OpGet, ID: firstArg(args)}, nil)
		},
	}
}

func newWriteCmd(name string, op store.Op, withID bool) *cobra.Command {
	flags := &entityFlags{}
	use, args := idArgs(string(op), withID)
	short := map[store.Op]string{
		store.OpCreate: "Create a record in %s",
		store.OpUpdate: "Replace a record in %s",
		store.OpPatch:  "Change some fields of a record in %s",
	}[op]
	cmd := &cobra.Command{
		Use:   use,
		Short: fmt.Sprintf(short, name),
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := readData(flags.data, cmd.InOrStdin())
			if err != nil {
				return err
			}
			action := store.Action{Op: op, ID: firstArg(args), Payload: payload}
			return runAction(cmd, name, action, flags.tags)
		},
	}
	cmd.Flags().StringVar(&flags.data, "data", "", "Record as JSON, @file or - for stdin (required)")
	_ = cmd.MarkFlagRequired("data")
	if name == services.SliceArticles && op != store.OpPatch {
		cmd.Flags().StringSliceVar(&flags.tags, "tag", nil, "Tag name, repeatable; replaces the tag ids in --data")
	}
	return cmd
}

func newDeleteCmd(name string) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: fmt.Sprintf("Delete a record from %s", name),
		Long: fmt.Sprintf(`Delete a record from %s after asking for confirmation on stdin.
Answer "y" to delete; anything else cancels. Use --yes in scripts.`, name),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(cmd, name, args[0], yes)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Delete without asking for confirmation")
	return cmd
}

// sliceDeleter sends deletes for one named slice through the store.
type sliceDeleter struct {
	st   *store.Store
	name string
}

func (d sliceDeleter) Delete(ctx context.Context, id string) error {
	_, err := d.st.Dispatch(ctx, d.name, store.Action{Op: store.OpDelete, ID: id})
	return err
}

// runDelete drives the same confirmation dialog the browser UI uses. Banner
// notices go to stderr so stdout stays JSON.
func runDelete(cmd *cobra.Command, name, id string, yes bool) error {
	ctx := cmd.Context()
	a, err := openSignedIn(ctx, name)
	if err != nil {
		return err
	}
	defer a.Close()

	banner := stderrBanner(cmd)
	defer banner.Clear()
	listRoute := "/" + name
	history := console.NewHistory(listRoute + "/" + id)
	dialog := console.NewDeleteDialog(sliceDeleter{st: a.store, name: name}, history, listRoute, banner)
	dialog.Open(id)

	if !yes && !confirm(cmd, fmt.Sprintf("Delete %s %s? [y/N] ", name, id)) {
		dialog.Cancel()
		banner.Info("Delete cancelled")
		return printJSON(cmd.OutOrStdout(), map[string]string{"cancelled": id})
	}
	if err := dialog.Confirm(ctx); err != nil {
		return describe(err)
	}
	return printJSON(cmd.OutOrStdout(), map[string]string{"deleted": id, "next": history.Current()})
}

// stderrBanner prints success and info notices on stderr. Errors are left
// to the returned error.
func stderrBanner(cmd *cobra.Command) *console.Banner {
	banner := console.NewBanner(0)
	banner.OnChange(func(n console.Notice) {
		if n.Visible && n.Kind != console.KindError {
			fmt.Fprintln(cmd.ErrOrStderr(), n.Message)
		}
	})
	return banner
}

// confirm prompts on stderr and reads one answer line from stdin.
func confirm(cmd *cobra.Command, prompt string) bool {
	fmt.Fprint(cmd.ErrOrStderr(), prompt)
	answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}

func newThumbnailCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "thumbnail <id> <file>",
		Short: "Upload a thumbnail image for an article",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openSignedIn(cmd.Context(), services.SliceArticles)
			if err != nil {
				return err
			}
			defer a.Close()
			result, err := a.media.UploadThumbnailFile(cmd.Context(), args[0], args[1])
			if err != nil {
				return describe(err)
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}
}

// openSignedIn opens the app and checks the stored session may manage the
// slice, refreshing the access token when it is about to expire.
func openSignedIn(ctx context.Context, name string) (*app, error) {
	a, err := openApp(cfg, logger)
	if err != nil {
		return nil, err
	}
	user, err := a.auth.Current()
	if err == nil {
		err = a.auth.EnsureFresh(ctx)
	}
	if err != nil {
		a.Close()
		return nil, describe(err)
	}
	if !services.CanManage(user, name) {
		a.Close()
		return nil, fmt.Errorf("%s may not manage %s", user.DisplayName(), name)
	}
	return a, nil
}

func runAction(cmd *cobra.Command, name string, action store.Action, tags []string) error {
	ctx := cmd.Context()
	a, err := openSignedIn(ctx, name)
	if err != nil {
		return err
	}
	defer a.Close()

	if name == services.SliceArticles && (action.Op == store.OpCreate || action.Op == store.OpUpdate) {
		return submitArticle(cmd, a, action, tags)
	}
	state, err := a.store.Dispatch(ctx, name, action)
	if err != nil {
		return describe(err)
	}
	return printJSON(cmd.OutOrStdout(), actionOutput(action.Op, state))
}

// submitArticle sends an article create or update through the same form
// the editor page uses.
func submitArticle(cmd *cobra.Command, a *app, action store.Action, tags []string) error {
	ctx := cmd.Context()
	article, err := prepareArticle(ctx, a, action.ID, action.Payload, tags)
	if err != nil {
		return describe(err)
	}
	banner := stderrBanner(cmd)
	defer banner.Clear()
	form := console.NewCreateForm(a.catalogue.Articles, banner)
	if action.Op == store.OpUpdate {
		form = console.NewEditForm(a.catalogue.Articles, banner, action.ID)
	}
	if _, err := form.Submit(ctx, article); err != nil {
		return describe(err)
	}
	return printJSON(cmd.OutOrStdout(), actionOutput(action.Op, a.catalogue.Articles.View()))
}

// prepareArticle fills in a unique slug and resolves tag names to ids
// against the backend's current lists.
// On update id names the article itself, so its own slug is not counted as
// taken.
func prepareArticle(ctx context.Context, a *app, id string, raw json.RawMessage, tags []string) (models.Article, error) {
	var article models.Article
	if err := json.Unmarshal(raw, &article); err != nil {
		return article, services.ErrBadRequest("Article payload is not valid JSON.")
	}
	if id != "" {
		parsed, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			return article, services.ErrBadRequest("Article id must be a number.")
		}
		article.ID = parsed
	}
	if strings.TrimSpace(article.Slug) == "" && strings.TrimSpace(article.Title) != "" {
		lookup := models.ListParams{Page: 1, PageSize: lookupPageSize, Search: services.CleanSearchTerm(article.Title)}
		if err := a.catalogue.Articles.List(ctx, lookup); err != nil {
			return article, err
		}
	}
	article = services.PrepareArticle(article, a.catalogue.Articles.View().Items)

	if names := services.CleanTags(tags); len(names) > 0 {
		if err := a.catalogue.Tags.List(ctx, models.ListParams{Page: 1, PageSize: lookupPageSize}); err != nil {
			return article, err
		}
		ids, unknown := services.ResolveTagIDs(names, a.catalogue.Tags.View().Items)
		if len(unknown) > 0 {
			return article, services.ErrBadRequest("Unknown tags: " + strings.Join(unknown, ", "))
		}
		article.Tags = ids
	}
	return article, nil
}

// actionOutput trims a slice snapshot to what the command produced: the
// page for list, the record for everything else.
func actionOutput(op store.Op, state any) any {
	raw, err := json.Marshal(state)
	if err != nil {
		return state
	}
	var view struct {
		Items      []json.RawMessage `json:"items"`
		Selected   json.RawMessage   `json:"selected"`
		Pagination json.RawMessage   `json:"pagination"`
	}
	if err := json.Unmarshal(raw, &view); err != nil {
		return state
	}
	switch {
	case op == store.OpList:
		return map[string]any{"items": view.Items, "pagination": view.Pagination}
	case op == store.OpCreate && len(view.Items) > 0:
		return view.Items[len(view.Items)-1]
	case len(view.Selected) > 0 && string(view.Selected) != "null":
		return view.Selected
	}
	return state
}

func idArgs(verb string, withID bool) (string, cobra.PositionalArgs) {
	if withID {
		return verb + " <id>", cobra.ExactArgs(1)
	}
	return verb, cobra.NoArgs
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
