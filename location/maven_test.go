package location

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCoordinate(t *testing.T) {
	c, err := ParseCoordinate("org.slf4j:slf4j-api:2.0.9")
	require.NoError(t, err)
	assert.Equal(t, Coordinate{GroupID: "org.slf4j", ArtifactID: "slf4j-api", Version: "2.0.9"}, c)
	assert.Equal(t, "org.slf4j:slf4j-api:2.0.9", c.String())

	c, err = ParseCoordinate("io.netty:netty-transport:linux-x86_64:4.1.100")
	require.NoError(t, err)
	assert.Equal(t, "linux-x86_64", c.Classifier)
	assert.Equal(t, "4.1.100", c.Version)
	assert.Equal(t, filepath.Join("/repo", "io", "netty", "netty-transport", "4.1.100", "netty-transport-4.1.100-linux-x86_64.jar"), c.JarPath("/repo"))

	for _, bad := range []string{"junit", "a:b", "a::c", "a:b:c:d:e"} {
		_, err := ParseCoordinate(bad)
		assert.Error(t, err, bad)
	}
}

func TestExpandClassPath(t *testing.T) {
	repo := t.TempDir()
	jar := Coordinate{GroupID: "org.example", ArtifactID: "lib", Version: "1.0"}.JarPath(repo)
	writeFile(t, jar, zipBytes(t, nil))

	entries, err := ExpandClassPath([]string{"build/classes", "org.example:lib:1.0", "lib/x.jar"}, repo)
	require.NoError(t, err)
	assert.Equal(t, []string{"build/classes", jar, "lib/x.jar"}, entries)

	_, err = ExpandClassPath([]string{"org.example:missing:1.0"}, repo)
	assert.Error(t, err)

	t.Setenv(EnvMavenRepoLocal, repo)
	assert.Equal(t, repo, LocalMavenRepo())
}
