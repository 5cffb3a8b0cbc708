package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/samcharles93/drugex/internal/tensor"
	"github.com/samcharles93/drugex/internal/vocab"
)

const (
	formatSMILES = "smiles"
	formatJSONL  = "jsonl"
	formatIDs    = "ids"
)

type sequenceRecord struct {
	SMILES string `json:"smiles"`
	Tokens []int  `json:"tokens"`
	Length int    `json:"length"`
}

// writeSequences writes one line per row of seqs.
func writeSequences(w io.Writer, format string, voc *vocab.Vocabulary, seqs tensor.IntMat) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	smiles := voc.DecodeBatch(seqs)
	for i, s := range smiles {
		row := seqs.Row(i)
		var err error
		switch format {
		case formatSMILES, "":
			_, err = fmt.Fprintln(bw, s)
		case formatJSONL:
			err = enc.Encode(sequenceRecord{SMILES: s, Tokens: trimAtEOS(row, voc.EOS()), Length: len(vocab.Tokenize(s))})
		case formatIDs:
			_, err = fmt.Fprintln(bw, joinInts(row))
		default:
			return fmt.Errorf("unknown output format %q (want smiles, jsonl or ids)", format)
		}
		if err != nil {
			return err
		}
	}
	return bw.Flush()
}

// trimAtEOS returns row up to and including the first EOS.
func trimAtEOS(row []int, eos int) []int {
	for i, tok := range row {
		if tok == eos {
			return row[:i+1]
		}
	}
	return row
}

func joinInts(xs []int) string {
	var b strings.Builder
	for i, x := range xs {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(strconv.Itoa(x))
	}
	return b.String()
}

// openOutput returns stdout for "" or "-".
func openOutput(path string) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

// readLines reads the first whitespace-separated field of every non-empty
// line. "" and "-" read stdin.
func readLines(path string) ([]string, error) {
	var r io.Reader = os.Stdin
	if path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer func() { _ = f.Close() }()
		r = f
	}
	var out []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		out = append(out, fields[0])
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
