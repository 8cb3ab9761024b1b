package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/taisys-technologies/voc-vault/pkg/merkle"
)

// output is the fixture shape consumed by the root update endpoint and by
// callers that need per-member proofs: the committed root plus one proof per
// address.
type output struct {
	Root   string              `json:"root"`
	Proofs map[string][]string `json:"proofs"`
}

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "Usage: go run ./scripts/merkleroot <addresses-file>")
		fmt.Fprintln(os.Stderr, "The file holds one hex address per line; blank lines and # comments are skipped.")
		os.Exit(1)
	}

	addrs, err := readAddresses(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading addresses: %v\n", err)
		os.Exit(1)
	}

	tree, err := merkle.BuildAddressTree(addrs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building tree: %v\n", err)
		os.Exit(1)
	}

	out := output{
		Root:   tree.Root().Hex(),
		Proofs: make(map[string][]string, len(addrs)),
	}
	for _, addr := range addrs {
		proof, err := tree.ProofFor(addr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error building proof for %s: %v\n", addr.Hex(), err)
			os.Exit(1)
		}
		hexes := make([]string, len(proof))
		for i, h := range proof {
			hexes[i] = h.Hex()
		}
		out.Proofs[addr.Hex()] = hexes
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding output: %v\n", err)
		os.Exit(1)
	}
}

func readAddresses(path string) ([]common.Address, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var addrs []common.Address
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !common.IsHexAddress(line) {
			return nil, fmt.Errorf("invalid address %q", line)
		}
		addrs = append(addrs, common.HexToAddress(line))
	}
	return addrs, scanner.Err()
}
