package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/harperclay/rfmflow/internal/cli"
	"github.com/harperclay/rfmflow/internal/model"
)

func segmentsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "segments",
		Short: "Show the segment catalog",
		Long: `Print the cluster-to-segment mapping used to label predictions. The
catalog is static metadata: replace it with segments.labels_path without
retraining the models.`,
		RunE: runSegments,
	}
}

func runSegments(_ *cobra.Command, _ []string) error {
	catalog := model.DefaultCatalog()
	if path := viper.GetString("segments.labels_path"); path != "" {
		loaded, err := model.LoadCatalog(path)
		if err != nil {
			return err
		}
		catalog = loaded
	}

	ids := make([]int, 0, len(catalog))
	for id := range catalog {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	fmt.Println(cli.FormatTitle("Customer segments"))
	for _, id := range ids {
		seg := catalog[id]
		content := fmt.Sprintf("%s\n\nProfile:  %s\nStrategy: %s",
			seg.Description, seg.Profile, seg.Strategy)
		fmt.Println(cli.RenderBox(fmt.Sprintf("Cluster %d: %s", id, seg.Name), content))
	}

	return nil
}
