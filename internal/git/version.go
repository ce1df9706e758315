package git

import gitbackend "github.com/thiagokokada/gitblame-go/internal/git/backend"

// BackendName names the compiled-in repository backend.
const BackendName = gitbackend.Name

// GitVersion reports the installed git executable's version. Only the git-cli
// backend depends on it.
func GitVersion() (string, error) {
	return gitbackend.GitVersion()
}

func MinGitVersion() string {
	return gitbackend.MinGitVersion()
}
