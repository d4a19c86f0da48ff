package scanner

import (
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/HendryAvila/nexus/internal/config"
	"github.com/HendryAvila/nexus/internal/metadata"
)

// Source tells which skill root a skill was found under.
type Source string

const (
	SourceUser   Source = "user"
	SourceSystem Source = "system"
)

// Tier ranks skills for presentation.
type Tier string

const (
	TierCore     Tier = "core"
	TierLearning Tier = "learning"
	TierOther    Tier = "other"
)

// Skill is the scanned view of one SKILL.md.
type Skill struct {
	Name           string   `json:"name"`
	Description    string   `json:"description,omitempty"`
	Source         Source   `json:"source"`
	Tier           Tier     `json:"tier"`
	Category       string   `json:"category,omitempty"`
	Path           string   `json:"path"`
	FilePath       string   `json:"_file_path,omitempty"`
	LoadReferences []string `json:"load_references,omitempty"`
	LoadScripts    []string `json:"load_scripts,omitempty"`
}

// SkillScan is the result of a skill scan.
type SkillScan struct {
	Skills  []Skill `json:"skills"`
	Skipped []Skip  `json:"skipped,omitempty"`
}

// Count returns how many skills came from each source.
func (ss SkillScan) Count() (user, system int) {
	for _, sk := range ss.Skills {
		if strings.Contains(sk.Path, config.UserSkillDir) {
			user++
		} else if strings.Contains(sk.Path, config.SystemSkillDir) {
			system++
		}
	}
	return user, system
}

// Find returns the first skill named name.
func (ss SkillScan) Find(name string) (Skill, bool) {
	for _, sk := range ss.Skills {
		if sk.Name == name {
			return sk, true
		}
	}
	return Skill{}, false
}

// Skills scans the user skill root, then the system skill root, and
// returns core skills, then learning skills, then the rest. Each tier
// keeps discovery order.
func (s *Scanner) Skills(full bool) SkillScan {
	var found []Skill
	var scan SkillScan

	roots := []struct {
		rel    string
		source Source
	}{
		{config.UserSkillDir, SourceUser},
		{config.SystemSkillDir, SourceSystem},
	}
	for _, r := range roots {
		s.walkSkills(config.Path(s.root, r.rel), r.source, full, &found, &scan.Skipped)
	}

	core := toSet(s.tables.CoreSkills)
	learning := toSet(s.tables.LearningSkills)

	tiers := map[Tier][]Skill{}
	for _, sk := range found {
		switch {
		case core[sk.Name]:
			sk.Tier = TierCore
		case learning[sk.Name]:
			sk.Tier = TierLearning
		default:
			sk.Tier = TierOther
		}
		tiers[sk.Tier] = append(tiers[sk.Tier], sk)
	}

	scan.Skills = make([]Skill, 0, len(found))
	for _, tier := range []Tier{TierCore, TierLearning, TierOther} {
		scan.Skills = append(scan.Skills, tiers[tier]...)
	}
	return scan
}

// walkSkills finds SKILL.md files at most one category level deep:
// <root>/<skill>/SKILL.md or <root>/<category>/<skill>/SKILL.md.
func (s *Scanner) walkSkills(base string, source Source, full bool, found *[]Skill, skipped *[]Skip) {
	_ = filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Missing root or unreadable dir: skip it, keep walking.
			if path == base {
				return fs.SkipDir
			}
			*skipped = s.skip(*skipped, path, err)
			return nil
		}

		rel, _ := filepath.Rel(base, path)
		depth := len(strings.Split(filepath.ToSlash(rel), "/"))

		if d.IsDir() {
			if path != base && strings.HasPrefix(d.Name(), ".") {
				return fs.SkipDir
			}
			if depth > 2 {
				return fs.SkipDir
			}
			return nil
		}
		if d.Name() != config.SkillFile || depth < 2 {
			return nil
		}

		sk, readErr := s.readSkill(path, base, source, full)
		if readErr != nil {
			*skipped = s.skip(*skipped, path, readErr)
			return nil
		}
		*found = append(*found, sk)
		return nil
	})
}

func (s *Scanner) readSkill(path, base string, source Source, full bool) (Skill, error) {
	rec := metadata.Extract(path)
	if rec.Outcome == metadata.Malformed {
		return Skill{}, rec.Err
	}

	folder := filepath.Dir(path)
	sk := Skill{
		Name:   filepath.Base(folder),
		Source: source,
		Path:   config.Rel(s.root, folder),
	}
	if parent := filepath.Dir(folder); parent != base {
		sk.Category = filepath.Base(parent)
	}

	if rec.Outcome == metadata.Found {
		if name := rec.Header.String("name"); name != "" {
			sk.Name = name
		}
		sk.Description = rec.Header.String("description")
		if full {
			sk.LoadReferences = rec.Header.Strings("load_references")
			sk.LoadScripts = rec.Header.Strings("load_scripts")
		}
	}
	if full {
		sk.FilePath = path
	}
	return sk, nil
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[item] = true
	}
	return set
}
