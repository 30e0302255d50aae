package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/managed-outline/internal/core/domain"
)

var (
	brushName  string
	brushSize  int
	brushColor string
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long:  `View and configure the outline brush and the text face.`,
	RunE:  runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsBrushCmd = &cobra.Command{
	Use:   "brush",
	Short: "Set the outline brush",
	Long: `Set the brush used to stroke outlines. Flags left unset keep their
current value.

Examples:
  managed-outline settings brush --size 5
  managed-outline settings brush --color "#ff000080"`,
	Args: cobra.NoArgs,
	RunE: runSettingsBrush,
}

var settingsFontCmd = &cobra.Command{
	Use:   "font [face]",
	Short: "Set the text face used to trace text",
	Long: `Set the glyph face used to trace text layers.

Available faces:
  basic             - 7x13 bitmap
  inconsolata       - Inconsolata 8x16
  inconsolata-bold  - Inconsolata Bold 8x16`,
	Args: cobra.ExactArgs(1),
	RunE: runSettingsFont,
}

func init() {
	settingsBrushCmd.Flags().StringVar(&brushName, "name", "", "brush label")
	settingsBrushCmd.Flags().IntVar(&brushSize, "size", 0, "stroke diameter in pixels")
	settingsBrushCmd.Flags().StringVar(&brushColor, "color", "", `hex colour, "#RRGGBB" or "#RRGGBBAA"`)

	settingsCmd.AddCommand(settingsShowCmd, settingsBrushCmd, settingsFontCmd)
	rootCmd.AddCommand(settingsCmd)
}

var errNoSettingsService = errors.New("settings service not configured")

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errNoSettingsService
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()
	cmd.Println("[Brush]")
	cmd.Printf("  Name: %s\n", settings.Brush.Name)
	cmd.Printf("  Size: %d\n", settings.Brush.Size)
	cmd.Printf("  Color: %s\n", settings.Brush.Color)
	cmd.Println()
	cmd.Println("[Text]")
	cmd.Printf("  Face: %s\n", settings.Text.Face.Description())

	if err := settingsService.Validate(); err != nil {
		cmd.Println()
		cmd.Printf("Warning: %v\n", err)
	}
	return nil
}

func runSettingsBrush(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errNoSettingsService
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	brush := settings.Brush
	if cmd.Flags().Changed("name") {
		brush.Name = brushName
	}
	if cmd.Flags().Changed("size") {
		brush.Size = brushSize
	}
	if cmd.Flags().Changed("color") {
		brush.Color = brushColor
	}

	if err := settingsService.SetBrush(brush); err != nil {
		return fmt.Errorf("failed to set brush: %w", err)
	}

	cmd.Printf("Brush set to %s, %dpx, %s.\n", brush.Name, brush.Size, brush.Color)
	return nil
}

func runSettingsFont(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errNoSettingsService
	}

	face := domain.TextFace(args[0])
	if err := settingsService.SetTextFace(face); err != nil {
		return fmt.Errorf("failed to set text face: %w", err)
	}

	cmd.Printf("Text face set to %s.\n", face.Description())
	return nil
}
