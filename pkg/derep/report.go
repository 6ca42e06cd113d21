package derep

import (
	"bufio"
	"fmt"
	"io"

	"github.com/yumyai/ggderep/pkg/cluster"
	"github.com/yumyai/ggderep/pkg/derr"
)

type ClusterEntry struct {
	Name           string   `json:"cluster"`
	Representative string   `json:"representative"`
	Genomes        []string `json:"genomes"`
}

// Report lists the final clusters in name order.
type Report struct {
	Clusters []ClusterEntry `json:"clusters"`
}

// Representatives returns cluster name to representative.
func (r *Report) Representatives() map[string]string {
	out := make(map[string]string, len(r.Clusters))
	for _, c := range r.Clusters {
		out[c.Name] = c.Representative
	}
	return out
}

type Summary struct {
	InputGenomes     int `json:"input_genomes"`
	RedundantGenomes int `json:"redundant_genomes"`
	Clusters         int `json:"clusters"`
}

// Builder collects the clusters and their representatives. Build fails
// until both are complete.
type Builder struct {
	clusters []cluster.Cluster
	reps     map[string]string
}

func NewBuilder() *Builder {
	return &Builder{reps: make(map[string]string)}
}

func (b *Builder) SetClusters(cs []cluster.Cluster) {
	b.clusters = cs
}

func (b *Builder) SetRepresentative(clusterName, genome string) {
	b.reps[clusterName] = genome
}

func (b *Builder) Build() (*Report, error) {
	if b.clusters == nil {
		return nil, derr.Usagef("derep.Build", "clustering has not run")
	}
	r := &Report{Clusters: make([]ClusterEntry, 0, len(b.clusters))}
	for _, c := range b.clusters {
		rep, ok := b.reps[c.Name]
		if !ok {
			return nil, derr.Usagef("derep.Build", "no representative picked for %s", c.Name)
		}
		r.Clusters = append(r.Clusters, ClusterEntry{
			Name:           c.Name,
			Representative: rep,
			Genomes:        append([]string(nil), c.Genomes...),
		})
	}
	return r, nil
}

func summarize(inputGenomes int, r *Report) Summary {
	return Summary{
		InputGenomes:     inputGenomes,
		RedundantGenomes: inputGenomes - len(r.Clusters),
		Clusters:         len(r.Clusters),
	}
}

// WriteGenomeGroups writes one TAB-delimited line per genome with its cluster
// and the cluster's representative.
func WriteGenomeGroups(w io.Writer, r *Report) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "genome_name\tcluster\trepresentative")
	for _, c := range r.Clusters {
		for _, g := range c.Genomes {
			fmt.Fprintf(bw, "%s\t%s\t%s\n", g, c.Name, c.Representative)
		}
	}
	return bw.Flush()
}
