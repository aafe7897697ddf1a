package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/vxgraph/pkg/nodelib"
)

// libraryCommand creates the library command.
func (c *CLI) libraryCommand() *cobra.Command {
	var (
		vxVersion string
		file      string
	)

	cmd := &cobra.Command{
		Use:   "library",
		Short: "Show the node type library",
		Long: `Library lists every operator type with its first input and output slots,
its non-image parameters and the accepted format pairs. A rule whose output
reads "VIRT->F" applies to virtual output images, which resolve to F.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			if vxVersion == "" {
				vxVersion = cfg.VXVersion
			}
			v, err := nodelib.ParseVersion(vxVersion)
			if err != nil {
				return err
			}

			var lib *nodelib.Library
			if file != "" {
				lib, err = nodelib.LoadFile(file, v)
			} else {
				lib, err = nodelib.Default(v)
			}
			if err != nil {
				return err
			}

			fmt.Println(StyleTitle.Render(fmt.Sprintf("Node type library · OpenVX %s", lib.Version())))
			fmt.Println(libraryTable(lib))
			printDetail("%d operator types", len(lib.Types()))
			return nil
		},
	}

	cmd.Flags().StringVar(&vxVersion, "vx-version", "", "OpenVX version: 1.0.1, 1.1, 1.2")
	cmd.Flags().StringVar(&file, "library", "", "show a library TOML file instead of the built-in one")

	return cmd
}
