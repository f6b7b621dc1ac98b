package main

import (
	"fmt"

	"github.com/opst/knitsim/pkg/translator/geometry"
	"github.com/spf13/cobra"
)

func newGeometryCommand(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "geometry",
		Short: "Transform geometry of model files",
	}
	cmd.AddCommand(newGeometryConvertCommand(g))
	return cmd
}

func newGeometryConvertCommand(g *globalFlags) *cobra.Command {
	output := ""
	detailed := string(geometry.Relative)
	daylighting := string(geometry.Relative)

	cmd := &cobra.Command{
		Use:   "convert IN.idf",
		Short: "Convert coordinate systems of surfaces, and simple surfaces into detailed ones",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			detailedSystem, err := geometry.AsCoordinateSystem(detailed)
			if err != nil {
				return fmt.Errorf("--detailed: %w", err)
			}
			daylightingSystem, err := geometry.AsCoordinateSystem(daylighting)
			if err != nil {
				return fmt.Errorf("--daylighting: %w", err)
			}

			ws, err := readWorkspace(args[0])
			if err != nil {
				return err
			}
			c := geometry.New(ws, g.logger(cmd))
			ok := c.Convert(detailedSystem, daylightingSystem)
			for _, m := range append(c.Warnings(), c.Errors()...) {
				fmt.Fprintln(cmd.ErrOrStderr(), m)
			}
			if err := writeWorkspace(cmd, output, ws); err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%w: some surfaces are not converted", ErrTranslationFailed)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file. stdout if not given")
	cmd.Flags().StringVar(&detailed, "detailed", detailed, "coordinate system of detailed surfaces. relative|world|absolute")
	cmd.Flags().StringVar(&daylighting, "daylighting", daylighting, "coordinate system of daylighting reference points. relative|world|absolute")
	return cmd
}
