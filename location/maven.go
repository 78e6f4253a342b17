package location

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EnvMavenRepoLocal overrides the local Maven repository used to find
// class-path entries given as coordinates.
const EnvMavenRepoLocal = "MAVEN_REPO_LOCAL"

// Coordinate is a Maven artifact, written groupId:artifactId:version or
// groupId:artifactId:classifier:version.
type Coordinate struct {
	GroupID    string
	ArtifactID string
	Version    string
	Classifier string
}

func ParseCoordinate(coord string) (Coordinate, error) {
	parts := strings.Split(coord, ":")
	for _, p := range parts {
		if p == "" {
			parts = nil
			break
		}
	}
	switch len(parts) {
	case 3:
		return Coordinate{GroupID: parts[0], ArtifactID: parts[1], Version: parts[2]}, nil
	case 4:
		return Coordinate{GroupID: parts[0], ArtifactID: parts[1], Classifier: parts[2], Version: parts[3]}, nil
	}
	return Coordinate{}, fmt.Errorf("invalid Maven coordinate: %s (expected groupId:artifactId:version or groupId:artifactId:classifier:version)", coord)
}

func (c Coordinate) String() string {
	if c.Classifier != "" {
		return c.GroupID + ":" + c.ArtifactID + ":" + c.Classifier + ":" + c.Version
	}
	return c.GroupID + ":" + c.ArtifactID + ":" + c.Version
}

// JarPath is the location of the artifact's jar in a repository laid out
// like ~/.m2/repository.
func (c Coordinate) JarPath(repo string) string {
	name := c.ArtifactID + "-" + c.Version
	if c.Classifier != "" {
		name += "-" + c.Classifier
	}
	groupPath := filepath.FromSlash(strings.ReplaceAll(c.GroupID, ".", "/"))
	return filepath.Join(repo, groupPath, c.ArtifactID, c.Version, name+".jar")
}

// LocalMavenRepo returns $MAVEN_REPO_LOCAL or ~/.m2/repository.
func LocalMavenRepo() string {
	if repo := os.Getenv(EnvMavenRepoLocal); repo != "" {
		return repo
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".m2", "repository")
	}
	return filepath.Join(home, ".m2", "repository")
}

// ExpandClassPath replaces class-path entries written as Maven coordinates
// with the jar they name in repo. Entries that exist on disk are kept as
// they are, even when they contain a colon.
func ExpandClassPath(entries []string, repo string) ([]string, error) {
	result := make([]string, 0, len(entries))
	for _, entry := range entries {
		if _, err := os.Stat(entry); err == nil || strings.Count(entry, ":") < 2 {
			result = append(result, entry)
			continue
		}
		coord, err := ParseCoordinate(entry)
		if err != nil {
			return nil, err
		}
		jar := coord.JarPath(repo)
		if _, err := os.Stat(jar); err != nil {
			return nil, fmt.Errorf("%s is not in the local repository: %w", coord, err)
		}
		log.Debugf("class path %s -> %s", coord, jar)
		result = append(result, jar)
	}
	return result, nil
}
