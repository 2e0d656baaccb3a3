package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"photobroom/internal/app"
	"photobroom/internal/catalog"
	"photobroom/internal/config"
	"photobroom/internal/photo"
	"photobroom/internal/tag"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// withApp reads the config, opens the catalog and runs fn against it.
func withApp(fn func(cmd *cobra.Command, args []string, a *app.App) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		paths, err := app.DefaultPaths()
		if err != nil {
			return fmt.Errorf("getting defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(paths.ConfigPath)
		if err != nil {
			return fmt.Errorf("reading config: %w", err)
		}
		paths.Apply(cfg)

		a, err := app.New(cfg, uuid.New().String())
		if err != nil {
			return fmt.Errorf("initializing app: %w", err)
		}
		defer a.Close()

		if err := fn(cmd, args, a); err != nil {
			return err
		}

		if show, _ := cmd.Flags().GetBool("metrics"); show {
			return printMetrics(a)
		}
		return nil
	}
}

func printMetrics(a *app.App) error {
	families, err := a.Metrics().Gather()
	if err != nil {
		return fmt.Errorf("gathering metrics: %w", err)
	}
	for _, f := range families {
		for _, m := range f.GetMetric() {
			var labels []string
			for _, l := range m.GetLabel() {
				labels = append(labels, l.GetName()+"="+l.GetValue())
			}
			var value float64
			switch {
			case m.GetCounter() != nil:
				value = m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				value = m.GetGauge().GetValue()
			case m.GetHistogram() != nil:
				value = float64(m.GetHistogram().GetSampleCount())
			}
			fmt.Printf("%s{%s} %g\n", f.GetName(), strings.Join(labels, ","), value)
		}
	}
	return nil
}

func parseIds(args []string) ([]photo.Id, error) {
	ids := make([]photo.Id, len(args))
	for i, arg := range args {
		n, err := strconv.ParseInt(arg, 10, 64)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid photo id %q", arg)
		}
		ids[i] = photo.Id(n)
	}
	return ids, nil
}

func parseGroupType(s string) (photo.GroupType, error) {
	switch s {
	case "animation":
		return photo.Animation, nil
	case "hdr":
		return photo.HDR, nil
	default:
		return photo.InvalidGroup, fmt.Errorf("unknown group type %q (want animation or hdr)", s)
	}
}

func printPhoto(p photo.Data) {
	var tags []string
	for _, n := range p.Tags.Names() {
		tags = append(tags, n.DisplayName+"="+p.Tags[n].Text())
	}
	group := ""
	if p.Group.GroupId.Valid() {
		role := "member"
		if p.Group.Role == photo.Representative {
			role = "rep"
		}
		group = fmt.Sprintf("  [%s %d %s]", p.Group.Type, p.Group.GroupId, role)
	}
	staged := " "
	if p.Flag(photo.Staged) != 0 {
		staged = "S"
	}
	fmt.Printf("%6d %s %s%s  %s\n", p.Id, staged, p.Path, group, strings.Join(tags, " "))
}

var rootCmd = &cobra.Command{
	Use:   "photobroom",
	Short: "Photo catalog",
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		paths, err := app.DefaultPaths()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		projectID := uuid.New().String()
		cfg := paths.NewConfig(projectID)

		if err := config.Init(paths.ConfigPath, cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", paths.ConfigPath)
		fmt.Printf("Project ID: %s\n", projectID)
		fmt.Printf("Base Dir:   %s\n", paths.BaseDir)
		fmt.Printf("Catalog:    %s\n", paths.DataDir)
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		paths, err := app.DefaultPaths()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(paths.ConfigPath)
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}
		paths.Apply(cfg)

		fmt.Printf("Configuration from %s:\n\n", paths.ConfigPath)
		fmt.Printf("Project ID: %s\n", cfg.ProjectID)
		fmt.Printf("Project:    %s\n", cfg.Project.Name)
		fmt.Printf("Base Dir:   %s\n", cfg.BaseDir)
		fmt.Printf("Database:   %s\n", cfg.Database.Type)
		fmt.Printf("Log Dir:    %s\n", cfg.Log.Dir)
		return nil
	},
}

var addCmd = &cobra.Command{
	Use:   "add PATH...",
	Short: "Add photos to the catalog",
	Args:  cobra.MinimumNArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app.App) error {
		recursive, _ := cmd.Flags().GetBool("recursive")

		ids, err := a.AddPhotos(args, recursive)
		if err != nil {
			return fmt.Errorf("adding photos: %w", err)
		}

		fmt.Printf("Added %d photo(s)\n", len(ids))
		return nil
	}),
}

// photoFilters builds the filters shared by list and count.
func photoFilters(cmd *cobra.Command) ([]catalog.Filter, error) {
	var filters []catalog.Filter

	tags, _ := cmd.Flags().GetStringArray("tag")
	for _, t := range tags {
		name, value, hasValue := strings.Cut(t, "=")
		f := catalog.FilterByTag{Name: name}
		if hasValue {
			v, err := app.ParseTagValue(tag.Lookup(name), value)
			if err != nil {
				return nil, err
			}
			if elems, err := v.List(); err == nil && len(elems) == 1 {
				v = elems[0]
			}
			f.Value = v
		}
		filters = append(filters, f)
	}
	if staged, _ := cmd.Flags().GetBool("staged"); staged {
		filters = append(filters, catalog.FilterByFlag{Flag: photo.Staged, Value: 1})
	}
	if path, _ := cmd.Flags().GetString("path"); path != "" {
		filters = append(filters, catalog.FilterByPath{Path: path})
	}
	if hide, _ := cmd.Flags().GetBool("hide-members"); hide {
		filters = append(filters, catalog.FilterNotGroupMember{})
	}
	return filters, nil
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List photos",
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app.App) error {
		filters, err := photoFilters(cmd)
		if err != nil {
			return err
		}

		photos, err := a.ListPhotos(filters)
		if err != nil {
			return err
		}
		if len(photos) == 0 {
			fmt.Println("No photos found.")
			return nil
		}
		for _, p := range photos {
			printPhoto(p)
		}
		return nil
	}),
}

var countCmd = &cobra.Command{
	Use:   "count",
	Short: "Count photos",
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app.App) error {
		filters, err := photoFilters(cmd)
		if err != nil {
			return err
		}

		n, err := a.CountPhotos(filters)
		if err != nil {
			return err
		}
		fmt.Println(n)
		return nil
	}),
}

var tagCmd = &cobra.Command{
	Use:   "tag ID NAME VALUE",
	Short: "Set a tag on a photo",
	Args:  cobra.ExactArgs(3),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app.App) error {
		ids, err := parseIds(args[:1])
		if err != nil {
			return err
		}
		return a.SetTag(ids[0], args[1], args[2])
	}),
}

var untagCmd = &cobra.Command{
	Use:   "untag ID NAME",
	Short: "Remove a tag from a photo",
	Args:  cobra.ExactArgs(2),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app.App) error {
		ids, err := parseIds(args[:1])
		if err != nil {
			return err
		}
		return a.RemoveTag(ids[0], args[1])
	}),
}

var tagsCmd = &cobra.Command{
	Use:   "tags [NAME]",
	Short: "List tag names, or the values of one tag",
	Args:  cobra.MaximumNArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app.App) error {
		if len(args) == 1 {
			for _, v := range a.TagValues(args[0]) {
				fmt.Println(v.Text())
			}
			return nil
		}

		names, err := a.TagNames()
		if err != nil {
			return err
		}
		for _, n := range names {
			fmt.Printf("%-12s %s\n", n.Name, n.Type)
		}
		return nil
	}),
}

var groupCmd = &cobra.Command{
	Use:   "group",
	Short: "Manage photo groups",
}

var groupCreateCmd = &cobra.Command{
	Use:   "create REP MEMBER...",
	Short: "Group photos under a representative",
	Args:  cobra.MinimumNArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app.App) error {
		typeName, _ := cmd.Flags().GetString("type")
		t, err := parseGroupType(typeName)
		if err != nil {
			return err
		}
		ids, err := parseIds(args)
		if err != nil {
			return err
		}

		gid, err := a.CreateGroup(ids[0], ids[1:], t)
		if err != nil {
			return err
		}
		fmt.Printf("Created group %d\n", gid)
		return nil
	}),
}

var groupRemoveCmd = &cobra.Command{
	Use:   "remove GID",
	Short: "Dissolve a group",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app.App) error {
		n, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid group id %q", args[0])
		}

		rep, err := a.RemoveGroup(photo.GroupId(n))
		if err != nil {
			return err
		}
		fmt.Printf("Removed group %d (representative %d)\n", n, rep)
		return nil
	}),
}

var removeCmd = &cobra.Command{
	Use:   "remove ID...",
	Short: "Remove photos from the catalog",
	Args:  cobra.MinimumNArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app.App) error {
		ids, err := parseIds(args)
		if err != nil {
			return err
		}
		if err := a.RemovePhotos(ids); err != nil {
			return err
		}
		fmt.Printf("Removed %d photo(s)\n", len(ids))
		return nil
	}),
}

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Mark staged photos as reviewed",
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app.App) error {
		ids, err := a.Review()
		if err != nil {
			return err
		}
		fmt.Printf("Reviewed %d photo(s)\n", len(ids))
		return nil
	}),
}

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "View the photo change log",
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app.App) error {
		lines, err := a.ChangeLog()
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			fmt.Println("No changes recorded.")
			return nil
		}
		for _, l := range lines {
			fmt.Println(l)
		}
		return nil
	}),
}

var peopleCmd = &cobra.Command{
	Use:   "people [NAME...]",
	Short: "List people, or add the given names",
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app.App) error {
		for _, name := range args {
			if _, err := a.AddPerson(name); err != nil {
				return err
			}
		}

		people, err := a.People()
		if err != nil {
			return err
		}
		for _, p := range people {
			fmt.Printf("%4d %s\n", p.Id, p.Name)
		}
		return nil
	}),
}

func init() {
	rootCmd.PersistentFlags().Bool("metrics", false, "Print worker metrics after the command")

	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	// group subcommands
	groupCmd.AddCommand(groupCreateCmd)
	groupCreateCmd.Flags().String("type", "animation", "Group type: animation or hdr")
	groupCmd.AddCommand(groupRemoveCmd)

	// filters
	for _, c := range []*cobra.Command{listCmd, countCmd} {
		c.Flags().StringArray("tag", nil, "Only photos with tag NAME or NAME=VALUE")
		c.Flags().Bool("staged", false, "Only staged photos")
		c.Flags().String("path", "", "Only the photo stored under this path")
		c.Flags().Bool("hide-members", false, "Hide group members")
	}

	// root commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(addCmd)
	addCmd.Flags().BoolP("recursive", "r", false, "Recurse into subdirectories")
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(countCmd)
	rootCmd.AddCommand(tagCmd)
	rootCmd.AddCommand(untagCmd)
	rootCmd.AddCommand(tagsCmd)
	rootCmd.AddCommand(groupCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(peopleCmd)
}
