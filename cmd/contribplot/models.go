package main

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/contribplot/internal/model"
	"github.com/verte-zerg/contribplot/internal/modelfile"
	"github.com/verte-zerg/contribplot/internal/render"
	"github.com/verte-zerg/contribplot/internal/store"
)

var (
	saveName   string
	saveCoef   string
	saveModels string
)

func newModelCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "model",
		Short: "Manage saved coefficient sets",
	}
	cmd.AddCommand(newModelSaveCmd())
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List saved models",
		Args:  cobra.NoArgs,
		RunE:  runModelListCmd,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "show NAME",
		Short: "Print a saved model as TOML",
		Args:  cobra.ExactArgs(1),
		RunE:  runModelShowCmd,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "export [NAME...]",
		Short: "Print saved models as a model file",
		RunE:  runModelExportCmd,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "delete NAME",
		Short: "Delete a saved model",
		Args:  cobra.ExactArgs(1),
		RunE:  runModelDeleteCmd,
	})
	return cmd
}

func newModelSaveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "save",
		Short: "Save inline coefficients or import a model file",
		Args:  cobra.NoArgs,
		RunE:  runModelSaveCmd,
	}
	cmd.Flags().StringVar(&saveName, "name", "", "model name (required with --coef)")
	cmd.Flags().StringVar(&saveCoef, "coef", "", "inline coefficients: 2,1 or A=2,B=1")
	cmd.Flags().StringVar(&saveModels, "models", "", "TOML model file to import")
	cmd.MarkFlagsMutuallyExclusive("coef", "models")
	cmd.MarkFlagsOneRequired("coef", "models")
	return cmd
}

func runModelSaveCmd(cmd *cobra.Command, _ []string) error {
	var specs []model.ModelSpec
	if saveCoef != "" {
		if saveName == "" {
			return fmt.Errorf("--name is required with --coef")
		}
		coefs, err := modelfile.ParseInline(saveCoef)
		if err != nil {
			return fmt.Errorf("invalid --coef: %w", err)
		}
		specs = []model.ModelSpec{{Name: saveName, Coefficients: coefs}}
	} else {
		loaded, err := modelfile.Load(saveModels)
		if err != nil {
			return fmt.Errorf("failed to load models: %w", err)
		}
		if saveName != "" {
			loaded, err = modelfile.Select(loaded, saveName)
			if err != nil {
				return fmt.Errorf("failed to select models: %w", err)
			}
		}
		specs = loaded
	}

	return withStore(func(st *store.Store) error {
		for _, spec := range specs {
			if err := st.SaveModel(cmd.Context(), spec); err != nil {
				return fmt.Errorf("failed to save model %q: %w", spec.Name, err)
			}
			log.Info().Str("model", spec.Name).Str("form", spec.Coefficients.Form().String()).Msg("model saved")
			if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", spec.Name); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
		}
		return nil
	})
}

func runModelListCmd(cmd *cobra.Command, _ []string) error {
	return withStore(func(st *store.Store) error {
		infos, err := st.ListModels(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list models: %w", err)
		}
		if len(infos) == 0 {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "No saved models.")
			return err
		}
		rows := make([][]string, 0, len(infos))
		for _, info := range infos {
			rows = append(rows, []string{
				info.Name,
				info.Form.String(),
				fmt.Sprintf("%d", info.Count),
				info.UpdatedAt.Local().Format(time.DateTime),
			})
		}
		for _, line := range render.FormatTable([]string{"Name", "Form", "Coefs", "Updated"}, rows, map[int]bool{2: true}) {
			if _, err := fmt.Fprintln(cmd.OutOrStdout(), line); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
		}
		return nil
	})
}

func runModelShowCmd(cmd *cobra.Command, args []string) error {
	return withStore(func(st *store.Store) error {
		spec, err := st.GetModel(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to load model: %w", err)
		}
		return modelfile.Write(cmd.OutOrStdout(), []model.ModelSpec{spec})
	})
}

func runModelExportCmd(cmd *cobra.Command, args []string) error {
	return withStore(func(st *store.Store) error {
		names := args
		if len(names) == 0 {
			infos, err := st.ListModels(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list models: %w", err)
			}
			for _, info := range infos {
				names = append(names, info.Name)
			}
		}
		specs, err := st.GetModels(cmd.Context(), names)
		if err != nil {
			return fmt.Errorf("failed to load models: %w", err)
		}
		return modelfile.Write(cmd.OutOrStdout(), specs)
	})
}

func runModelDeleteCmd(cmd *cobra.Command, args []string) error {
	return withStore(func(st *store.Store) error {
		if err := st.DeleteModel(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("failed to delete model: %w", err)
		}
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
		return err
	})
}
