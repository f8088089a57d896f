package lexicon

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// DefaultLanguages are the language tags accepted when none are configured.
var DefaultLanguages = []string{"english", "eng", "british"}

// DefaultVocabulary is the built-in crypto vocabulary used when no vocabulary
// file is configured.
var DefaultVocabulary = []string{
	"stablecoin",
	"stablecoins",
	"nft",
	"nfts",
	"bitcoin",
	"ethereum",
	"solana",
	"bitcoins",
	"ethereums",
	"solanas",
	"dogecoin",
	"sol",
	"btc",
	"eth",
	"usdt",
	"xrp",
	"bnb",
	"usdc",
	"dodge",
	"doge",
	"ada",
	"steth",
}

// ReadVocabulary parses one entity per line. Blank lines and lines starting
// with '#' are skipped; a trailing "# comment" is stripped.
func ReadVocabulary(r io.Reader) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read vocabulary: %w", err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: vocabulary has no entries", ErrConfiguration)
	}
	return out, nil
}

// ReadVocabularyFile is ReadVocabulary on the file at path.
func ReadVocabularyFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open vocabulary: %w", err)
	}
	defer f.Close()

	vocab, err := ReadVocabulary(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return vocab, nil
}
