package bundle

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/HendryAvila/nexus/internal/config"
	"github.com/HendryAvila/nexus/internal/scanner"
)

// Skill sub-folders.
const (
	referencesDir = "references"
	scriptsDir    = "scripts"
	assetsDir     = "assets"
)

// SkillBundle carries a skill's SKILL.md plus every reference and script
// its header asks to load, with the remaining files listed by path.
type SkillBundle struct {
	LoadedAt            string            `json:"loaded_at"`
	Bundle              string            `json:"bundle"`
	SkillName           string            `json:"skill_name"`
	SkillPath           string            `json:"skill_path,omitempty"`
	Skill               *scanner.Skill    `json:"skill,omitempty"`
	Files               map[string]string `json:"files,omitempty"`
	ReferencesLoaded    []string          `json:"references_loaded,omitempty"`
	ScriptsLoaded       []string          `json:"scripts_loaded,omitempty"`
	ReferencesAvailable []string          `json:"references_available,omitempty"`
	ScriptsAvailable    []string          `json:"scripts_available,omitempty"`
	AssetsAvailable     []string          `json:"assets_available,omitempty"`
	Missing             []string          `json:"missing,omitempty"`
	Usage               string            `json:"_usage,omitempty"`
	Error               string            `json:"error,omitempty"`
}

const skillUsage = "Follow SKILL.md. Declared references and scripts are included in files; read any other available file by path when the skill calls for it."

// LoadSkill finds a skill by name, user skills first, and loads it. A miss
// is reported in Error.
func (l *Loader) LoadSkill(name string) *SkillBundle {
	b := &SkillBundle{LoadedAt: LoadedAt(), Bundle: "skill", SkillName: name}

	sk, ok := l.scanner.Skills(true).Find(strings.TrimSpace(name))
	if !ok {
		b.Error = fmt.Sprintf("Skill not found: %s", name)
		return b
	}
	b.Skill = &sk
	b.SkillPath = sk.Path

	folder := config.Path(l.root, sk.Path)
	main, err := os.ReadFile(filepath.Join(folder, config.SkillFile))
	if err != nil {
		b.Error = fmt.Sprintf("reading %s: %v", config.SkillFile, err)
		return b
	}
	b.Files = map[string]string{config.SkillFile: string(main)}

	b.ReferencesLoaded = l.loadDeclared(b, folder, referencesDir, sk.LoadReferences)
	b.ScriptsLoaded = l.loadDeclared(b, folder, scriptsDir, sk.LoadScripts)

	b.ReferencesAvailable = listFiles(filepath.Join(folder, referencesDir), folder)
	b.ScriptsAvailable = listFiles(filepath.Join(folder, scriptsDir), folder)
	b.AssetsAvailable = listFiles(filepath.Join(folder, assetsDir), folder)
	b.Usage = skillUsage
	return b
}

// loadDeclared reads each declared entry from sub. Entries may be given
// with or without the sub-folder prefix. Entries that escape the skill
// folder or do not exist are recorded in Missing.
func (l *Loader) loadDeclared(b *SkillBundle, folder, sub string, declared []string) []string {
	var loaded []string
	for _, entry := range declared {
		rel := filepath.ToSlash(filepath.Clean(filepath.FromSlash(entry)))
		if !strings.HasPrefix(rel, sub+"/") {
			rel = sub + "/" + rel
		}
		if strings.Contains(rel, "..") {
			b.Missing = append(b.Missing, entry)
			continue
		}

		data, err := os.ReadFile(filepath.Join(folder, filepath.FromSlash(rel)))
		if err != nil {
			l.logger.Debug("declared skill file not loaded", "skill", b.SkillName, "file", rel, "error", err)
			b.Missing = append(b.Missing, entry)
			continue
		}
		b.Files[rel] = string(data)
		loaded = append(loaded, rel)
	}
	return loaded
}
