package main

import (
	"github.com/opst/knitsim/pkg/dakota"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newDakotaCommand(_ *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dakota",
		Short: "Inspect files exchanged with the optimizer",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "params FILE",
		Short: "Print a parameters file as YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := dakota.LoadParams(args[0])
			if err != nil {
				return err
			}

			type variable struct {
				Descriptor string  `yaml:"descriptor"`
				Value      float64 `yaml:"value"`
			}
			out := struct {
				EvalID    string     `yaml:"evalId"`
				Variables []variable `yaml:"variables"`
				Functions []string   `yaml:"functions"`
				ASV       []int      `yaml:"asv,flow"`
			}{
				EvalID:    p.EvalID,
				Functions: p.Functions,
				ASV:       p.ASV,
			}
			for _, v := range p.Variables {
				out.Variables = append(out.Variables, variable{Descriptor: v.Descriptor, Value: v.Value})
			}

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(out); err != nil {
				return err
			}
			return enc.Close()
		},
	})
	return cmd
}
