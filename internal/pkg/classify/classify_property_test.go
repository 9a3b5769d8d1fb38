package classify

import (
	"reflect"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/autocommit/autocommit/internal/pkg/git"
	"github.com/autocommit/autocommit/internal/pkg/message"
)

// genPathWord generates a lowercase path segment.
func genPathWord() gopter.Gen {
	const charset = "abcdefghijklmnopqrstuvwxyz"
	return gen.IntRange(1, 8).FlatMap(func(v interface{}) gopter.Gen {
		return gen.SliceOfN(v.(int), gen.Rune()).Map(func(runes []rune) string {
			out := make([]rune, len(runes))
			for i, r := range runes {
				idx := int(r) % len(charset)
				if idx < 0 {
					idx = -idx
				}
				out[i] = rune(charset[idx])
			}
			return string(out)
		})
	}, reflect.TypeOf(""))
}

// genRepoPath generates a relative path with up to two directory levels.
func genRepoPath() gopter.Gen {
	return gopter.CombineGens(
		gen.IntRange(0, 2),
		gen.SliceOfN(3, genPathWord()),
		gen.OneConstOf(".go", ".md", ".css", ".py", ".ts", ".yml"),
	).Map(func(values []interface{}) string {
		depth := values[0].(int)
		words := values[1].([]string)
		ext := values[2].(string)
		return strings.Join(words[:depth+1], "/") + ext
	})
}

// genStagedChange generates a single staged change.
func genStagedChange() gopter.Gen {
	return gopter.CombineGens(
		gen.OneConstOf(git.KindAdded, git.KindModified, git.KindDeleted, git.KindRenamed, git.KindCopied),
		genRepoPath(),
	).Map(func(values []interface{}) git.Change {
		return git.Change{Kind: values[0].(git.ChangeKind), Path: values[1].(string)}
	})
}

// genChangeSet generates a non-empty change snapshot without diff text.
func genChangeSet() gopter.Gen {
	return gen.IntRange(1, 8).FlatMap(func(v interface{}) gopter.Gen {
		return gen.SliceOfN(v.(int), genStagedChange()).Map(func(changes []git.Change) *git.ChangeSet {
			return &git.ChangeSet{Changes: changes}
		})
	}, reflect.TypeOf(&git.ChangeSet{}))
}

func TestClassify_Property(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(42)

	properties := gopter.NewProperties(parameters)
	classifier := NewDefaultClassifier()

	properties.Property("every snapshot yields a valid descriptor", prop.ForAll(
		func(set *git.ChangeSet, maxFiles int) bool {
			d := classifier.Classify(set, maxFiles)
			if !message.IsValidCommitType(d.Type) {
				t.Logf("invalid type %q for paths %v", d.Type, set.Paths())
				return false
			}
			if err := d.Validate(); err != nil {
				t.Logf("invalid descriptor: %v", err)
				return false
			}
			return true
		},
		genChangeSet(),
		gen.IntRange(1, 10),
	))

	properties.Property("classification is deterministic", prop.ForAll(
		func(set *git.ChangeSet, maxFiles int) bool {
			return classifier.Classify(set, maxFiles) == classifier.Classify(set, maxFiles)
		},
		genChangeSet(),
		gen.IntRange(1, 10),
	))

	properties.Property("the header always parses back", prop.ForAll(
		func(set *git.ChangeSet) bool {
			d := classifier.Classify(set, 5)
			back, ok := message.ParseHeader(d.Header())
			if !ok {
				t.Logf("header %q does not parse", d.Header())
				return false
			}
			return back.Type == d.Type && back.Scope == d.Scope && back.Theme == d.Theme
		},
		genChangeSet(),
	))

	properties.Property("the intro preview respects the file cap", prop.ForAll(
		func(set *git.ChangeSet, maxFiles int) bool {
			d := classifier.Classify(set, maxFiles)
			total := len(set.Paths())

			if total > maxFiles {
				return strings.Contains(d.Intro, "个文件。")
			}
			// No remainder suffix when everything is listed.
			return !strings.Contains(d.Intro, " 等")
		},
		genChangeSet(),
		gen.IntRange(1, 10),
	))

	properties.Property("empty snapshots classify as chore in the repo scope", prop.ForAll(
		func(maxFiles int) bool {
			d := classifier.Classify(&git.ChangeSet{}, maxFiles)
			return d.Type == "chore" && d.Scope == message.DefaultScope
		},
		gen.IntRange(1, 10),
	))

	properties.TestingRun(t)
}
