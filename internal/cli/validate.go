package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/docdex/harvest/internal/browser"
	"github.com/docdex/harvest/internal/config"
	"github.com/docdex/harvest/internal/pagination"
	"github.com/docdex/harvest/internal/ui"
)

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate <site.yaml>",
	Short: "Check a site descriptor without crawling",
	Long: `Validate loads a site descriptor, checks its URLs, selectors, and
pagination pattern, and reports whether a browser executable can be found.
Nothing is fetched.`,
	Example: `  harvest validate sites/doctors.yaml`,
	Args:    cobra.ExactArgs(1),
	RunE:    runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	site, err := config.LoadSite(args[0])
	if err != nil {
		return err
	}

	// LoadSite checks patterns syntactically; building the strategy catches
	// the rest (for example a path pattern that compiles to a bad regexp).
	if _, err := pagination.New(site.Pagination); err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(ui.Bold("Descriptor OK: " + site.Name))
	fmt.Printf("  Start URL:   %s\n", site.StartURL)
	fmt.Printf("  Pagination:  %s\n", string(site.Pagination.Type))
	fmt.Printf("  Lifecycle:   %s\n", string(site.Lifecycle.Mode))
	fmt.Printf("  Max pages:   %s\n", formatLimit(site.Limits.MaxPages))

	if chrome := browser.FindChrome(); chrome != "" {
		fmt.Printf("  Browser:     %s\n", ui.Success(chrome))
	} else {
		fmt.Printf("  Browser:     %s\n", ui.Error("not found (set HARVEST_CHROME_PATH)"))
	}
	fmt.Println()

	return nil
}

func formatLimit(n int) string {
	if n <= 0 {
		return "unlimited"
	}
	return fmt.Sprintf("%d", n)
}
