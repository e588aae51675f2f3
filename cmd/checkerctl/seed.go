package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pkordes/granblue-checker/internal/repo"
	"github.com/pkordes/granblue-checker/internal/service"
)

var seedCmd = &cobra.Command{
	Use:   "seed <file.yaml>",
	Short: "Create the categories, values and input fields a YAML file describes",
	Long: `seed applies a taxonomy file to the database. Anything that already
exists (matched by name) is left untouched, so the same file can be applied
after every deploy.`,
	Args: cobra.ExactArgs(1),
	RunE: runSeed,
}

func runSeed(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	seed, err := service.ParseSeed(f)
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}

	ctx := cmd.Context()
	pool, err := openPool(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	seeder := service.NewSeeder(
		service.NewTaxonomyService(repo.NewCategoryRepo(pool), repo.NewValueRepo(pool)),
		service.NewInputService(repo.NewInputRepo(pool)),
	)
	rep, err := seeder.Apply(ctx, seed)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(),
		"categories: %d created\nvalues: %d created\ninput groups: %d created\ninput fields: %d created\nalready present: %d\n",
		rep.CategoriesCreated, rep.ValuesCreated, rep.GroupsCreated, rep.FieldsCreated, rep.Existing)
	return nil
}
