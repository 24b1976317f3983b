package cmd

import (
	keelhttp "github.com/foomo/keel/net/http"
	"github.com/foomo/roadmapserver/pkg/render"
	"github.com/foomo/roadmapserver/pkg/repo"
	"github.com/foomo/roadmapserver/roadmap"
	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func NewTreeCommand() *cobra.Command {
	v := newViper()
	cmd := &cobra.Command{
		Use:   "tree <url>",
		Short: "Print the tree of a roadmap",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := repo.LoadIndex(cmd.Context(), keelhttp.NewHTTPClient(
				keelhttp.HTTPClientWithTimeout(repositoryTimeoutFlag(v)),
			), args[0])
			if err != nil {
				return err
			}
			tree := roadmap.BuildTree(entries, rootFlag(v))
			w := cmd.OutOrStdout()
			switch {
			case jsonFlag(v):
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(tree)
			case htmlFlag(v):
				return render.Tree(w, roadmap.Slugify(tree.Label), tree)
			default:
				return tree.Fprint(w)
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
