package fasta

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/yumyai/ggcluster/pkg/model"
)

// ReadPositions parses a tab-separated positions file:
//
//	gene_id  genome_id  contig_id  start  end  strand
//
// strand is "+" or "-". Lines starting with "#" are comments.
func ReadPositions(r io.Reader) (map[string]*model.Region, error) {
	sc := bufio.NewScanner(r)
	out := make(map[string]*model.Region)
	line := 0

	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Split(text, "\t")
		if len(fields) != 6 {
			return nil, fmt.Errorf("positions line %d: want 6 fields, got %d", line, len(fields))
		}

		start, err := strconv.Atoi(fields[3])
		if err != nil {
			return nil, fmt.Errorf("positions line %d: bad start %q", line, fields[3])
		}
		end, err := strconv.Atoi(fields[4])
		if err != nil {
			return nil, fmt.Errorf("positions line %d: bad end %q", line, fields[4])
		}
		if start > end {
			return nil, fmt.Errorf("positions line %d: start %d > end %d", line, start, end)
		}

		var strand model.Strand
		switch fields[5] {
		case "+":
			strand = model.Forward
		case "-":
			strand = model.Reverse
		default:
			return nil, fmt.Errorf("positions line %d: bad strand %q", line, fields[5])
		}

		geneID := fields[0]
		if _, dup := out[geneID]; dup {
			return nil, fmt.Errorf("positions line %d: duplicate gene %s", line, geneID)
		}
		out[geneID] = &model.Region{
			GenomeID: fields[1],
			ContigID: fields[2],
			Start:    start,
			End:      end,
			Strand:   strand,
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// LoadPositions reads the file at path and attaches regions to their
// genes. Genes without an entry stay position-free; the engine handles
// the fallback. Entries without a matching gene are reported so a stale
// positions file does not pass silently.
func LoadPositions(path string, genes []*model.Gene) (missing []string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	regions, err := ReadPositions(f)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*model.Gene, len(genes))
	for _, g := range genes {
		byID[g.GeneID] = g
	}
	for id, region := range regions {
		g, ok := byID[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		if region.GenomeID != g.GenomeID {
			return nil, fmt.Errorf("positions: gene %s belongs to %s, file says %s",
				id, g.GenomeID, region.GenomeID)
		}
		g.Region = region
	}
	sort.Strings(missing)
	return missing, nil
}
