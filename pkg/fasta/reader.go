// Package fasta loads the gene collection from disk: a multi-FASTA of
// gene sequences whose headers follow the genome|contig|gene convention
// of the gene-table sequence store, plus an optional positions TSV for
// chromosomal coordinates.
package fasta

import (
	"bufio"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/yumyai/ggcluster/pkg/model"
)

// maxLine allows single-line sequences from linearized FASTA files.
const maxLine = 16 * 1024 * 1024

// ReadGenes parses gene records from r. Each header is
// ">genome|contig|gene" with an optional free-text remainder after the
// first whitespace, which is dropped. Cancelable between records.
func ReadGenes(ctx context.Context, r io.Reader) ([]*model.Gene, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLine)

	var genes []*model.Gene
	var cur *model.Gene
	var seq strings.Builder
	line := 0

	flush := func() {
		if cur != nil {
			cur.Seq = seq.String()
			genes = append(genes, cur)
			seq.Reset()
		}
	}

	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		if strings.HasPrefix(text, ">") {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}

			flush()
			genomeID, contigID, geneID, err := splitHeader(text)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			cur = &model.Gene{GeneID: geneID, GenomeID: genomeID}
			// Contig identity without coordinates is still useful for
			// the positions file to cross-check against.
			_ = contigID
			continue
		}
		if cur == nil {
			return nil, fmt.Errorf("line %d: sequence before first header", line)
		}
		seq.WriteString(text)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	flush()

	if len(genes) == 0 {
		return nil, fmt.Errorf("no FASTA records found")
	}
	return genes, nil
}

// splitHeader takes ">KCB09|contig000007|KCB09_00064 some description"
// apart.
func splitHeader(header string) (genomeID, contigID, geneID string, err error) {
	name := strings.TrimPrefix(header, ">")
	if i := strings.IndexAny(name, " \t"); i >= 0 {
		name = name[:i]
	}
	parts := strings.Split(name, "|")
	if len(parts) != 3 || parts[0] == "" || parts[2] == "" {
		return "", "", "", fmt.Errorf("malformed header %q, want genome|contig|gene", header)
	}
	return parts[0], parts[1], parts[2], nil
}

// OpenGenes reads a gene FASTA from path, transparently decompressing
// .gz files the way the sequence store ships them.
func OpenGenes(ctx context.Context, path string) ([]*model.Gene, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
		defer gz.Close()
		r = gz
	}
	return ReadGenes(ctx, r)
}
