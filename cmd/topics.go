package cmd

import (
	"fmt"

	keelhttp "github.com/foomo/keel/net/http"
	"github.com/foomo/roadmapserver/pkg/render"
	"github.com/foomo/roadmapserver/pkg/repo"
	"github.com/foomo/roadmapserver/roadmap"
	"github.com/spf13/cobra"
)

func NewTopicsCommand() *cobra.Command {
	v := newViper()
	cmd := &cobra.Command{
		Use:   "topics <url>",
		Short: "Print the top level topics of a roadmap",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := repo.LoadIndex(cmd.Context(), keelhttp.NewHTTPClient(
				keelhttp.HTTPClientWithTimeout(repositoryTimeoutFlag(v)),
			), args[0])
			if err != nil {
				return err
			}
			root := rootFlag(v)
			topics := roadmap.ExtractTopLevelTopics(entries, root)
			w := cmd.OutOrStdout()
			switch {
			case jsonFlag(v):
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(topics)
			case htmlFlag(v):
				return render.Topics(w, roadmap.Slugify(root), topics)
			default:
				for _, topic := range topics {
					if _, err := fmt.Fprintf(w, "%s\t%s\n", topic.Key(), topic.Label); err != nil {
						return err
					}
				}
				return nil
			}
		},
	}

	flags := cmd.Flags()
	addRootFlag(flags, v)
	addJSONFlag(flags, v)
	addHTMLFlag(flags, v)
	addRepositoryTimeoutFlag(flags, v)

	return cmd
}
