package persistence

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/suderio/dicer/internal/data"
)

// LogFile is the name of the event log inside a table directory.
const LogFile = "log.jsonl"

// ErrNoSuchTable is returned when loading a table that was never created.
var ErrNoSuchTable = errors.New("table not found")

const sampleGame = `# Named dices available at this table.
dice:
  - name: Force
    description: Force dice
    faces: [Weak, Strong, Unpredictable]
  - name: Fudge
    description: Fate dice
    faces: [Minus, Blank, Plus]
`

// CampaignManager lays out tables on disk: <tables_dir>/<table>/{game.yaml, players/, log.jsonl}.
type CampaignManager struct {
	TablesDir string
}

// NewCampaignManager returns a manager rooted at tablesDir.
func NewCampaignManager(tablesDir string) *CampaignManager {
	return &CampaignManager{TablesDir: tablesDir}
}

// TablePath produces the directory of a table.
func (c *CampaignManager) TablePath(table string) string {
	return filepath.Join(c.TablesDir, table)
}

// LogPath returns the path to the event log of a table.
func (c *CampaignManager) LogPath(table string) string {
	return filepath.Join(c.TablePath(table), LogFile)
}

// Loader returns the data loader of a table.
func (c *CampaignManager) Loader(table string) *data.Loader {
	return data.NewLoader([]string{c.TablePath(table)})
}

// Create scaffolds a table with a sample game.yaml and opens its log.
// An existing game.yaml is kept.
func (c *CampaignManager) Create(table string) (*Store, error) {
	path := c.TablePath(table)

	dirs := []string{
		path,
		filepath.Join(path, data.PlayersDir),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	gamePath := filepath.Join(path, data.GameFile)
	if _, err := os.Stat(gamePath); errors.Is(err, os.ErrNotExist) {
		if err := os.WriteFile(gamePath, []byte(sampleGame), 0644); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", gamePath, err)
		}
	}

	return NewStore(c.LogPath(table))
}

// Load opens the log of an existing table.
func (c *CampaignManager) Load(table string) (*Store, error) {
	path := c.TablePath(table)
	if stat, err := os.Stat(path); err != nil || !stat.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNoSuchTable, path)
	}
	return NewStore(c.LogPath(table))
}
