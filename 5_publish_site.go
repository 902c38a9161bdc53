package phylotree

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// publishedFiles maps local artifacts to their paths on the gh-pages branch.
// The datasets/ entries are the files the tree explorer front-end loads.
var publishedFiles = []struct {
	Src  string
	Dest string
}{
	{"report.html", "index.html"},
	{"report.md", "index.md"},
	{filepath.Join("trees", "news_tree.txt"), filepath.Join("datasets", "news.txt")},
	{filepath.Join("trees", "analysis_results.json"), filepath.Join("datasets", "analysis_results.json")},
}

var PublishSiteCmd = &cobra.Command{
	Use:   "publish-site",
	Short: "Publish report and tree artifacts to GitHub Pages",
	Run: func(cmd *cobra.Command, args []string) {
		// Check if report.html exists
		if _, err := os.Stat("report.html"); os.IsNotExist(err) {
			log.Fatalf("report.html not found. Run 'generate-report' first.")
		}

		// Check if the tree artifacts exist
		if _, err := os.Stat(filepath.Join("trees", "news_tree.txt")); os.IsNotExist(err) {
			log.Fatalf("trees/news_tree.txt not found. Run 'build-tree' first.")
		}

		// Create or update GitHub Pages repository
		if err := publishToGitHubPages(); err != nil {
			log.Fatalf("Failed to publish to GitHub Pages: %v", err)
		}

		log.Println("Successfully published to GitHub Pages")
	},
}

// publishToGitHubPages handles the GitHub Pages publish process
func publishToGitHubPages() error {
	// Get current working directory
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %v", err)
	}

	// Create a temporary directory for the gh-pages branch
	tempDir := filepath.Join(cwd, "gh-pages-temp")
	if err := os.RemoveAll(tempDir); err != nil {
		return fmt.Errorf("failed to remove existing temp directory: %v", err)
	}

	// Check if we're in a git repository
	if _, err := exec.Command("git", "rev-parse", "--git-dir").Output(); err != nil {
		return fmt.Errorf("not in a git repository")
	}

	// Get the remote repository URL
	remoteURL, err := exec.Command("git", "config", "--get", "remote.origin.url").Output()
	if err != nil {
		return fmt.Errorf("failed to get remote URL: %v", err)
	}
	remoteURLStr := strings.TrimSpace(string(remoteURL))

	// Clone the repository to temp directory
	log.Printf("Cloning repository for GitHub Pages...")
	if err := exec.Command("git", "clone", remoteURLStr, tempDir).Run(); err != nil {
		return fmt.Errorf("failed to clone repository: %v", err)
	}

	// Change to temp directory
	if err := os.Chdir(tempDir); err != nil {
		return fmt.Errorf("failed to change to temp directory: %v", err)
	}

	// Check if gh-pages branch exists remotely
	_, err = exec.Command("git", "show-ref", "--verify", "--quiet", "refs/remotes/origin/gh-pages").Output()
	ghPagesBranchExistsRemotely := err == nil

	if ghPagesBranchExistsRemotely {
		// Switch to gh-pages branch (create local branch if it doesn't exist)
		if err := exec.Command("git", "checkout", "gh-pages").Run(); err != nil {
			// If local branch doesn't exist, create it from remote
			if err := exec.Command("git", "checkout", "-b", "gh-pages", "origin/gh-pages").Run(); err != nil {
				return fmt.Errorf("failed to checkout gh-pages branch: %v", err)
			}
		}
	} else {
		// Create orphan gh-pages branch
		if err := exec.Command("git", "checkout", "--orphan", "gh-pages").Run(); err != nil {
			return fmt.Errorf("failed to create gh-pages branch: %v", err)
		}

		// Remove all files from the orphan branch
		if err := exec.Command("git", "rm", "-rf", ".").Run(); err != nil {
			// This might fail if there are no files, which is okay
			log.Printf("Warning: failed to remove files from orphan branch: %v", err)
		}
	}

	// Copy the artifacts into the temp clone
	for _, pf := range publishedFiles {
		data, err := os.ReadFile(filepath.Join(cwd, pf.Src))
		if err != nil {
			return fmt.Errorf("failed to read %s: %v", pf.Src, err)
		}

		dest := filepath.Join(tempDir, pf.Dest)
		if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
			return fmt.Errorf("failed to create directory for %s: %v", pf.Dest, err)
		}
		if err := os.WriteFile(dest, data, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %v", pf.Dest, err)
		}
	}

	// Add the files to git
	addArgs := []string{"add"}
	for _, pf := range publishedFiles {
		addArgs = append(addArgs, pf.Dest)
	}
	if err := exec.Command("git", addArgs...).Run(); err != nil {
		return fmt.Errorf("failed to add files to git: %v", err)
	}

	// Check if there are changes to commit
	statusOutput, err := exec.Command("git", "status", "--porcelain").Output()
	if err != nil {
		return fmt.Errorf("failed to check git status: %v", err)
	}

	if len(strings.TrimSpace(string(statusOutput))) == 0 {
		log.Println("No changes to commit")
		return nil
	}

	// Commit the changes
	commitMessage := fmt.Sprintf("Update news similarity report - %s", time.Now().Format("2006-01-02 15:04:05"))
	if err := exec.Command("git", "commit", "-m", commitMessage).Run(); err != nil {
		return fmt.Errorf("failed to commit changes: %v", err)
	}

	// Push to gh-pages branch
	pushCmd := exec.Command("git", "push", "origin", "gh-pages")
	pushOutput, err := pushCmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("failed to push to gh-pages branch: %v\nOutput: %s", err, string(pushOutput))
	}

	// Change back to original directory
	if err := os.Chdir(cwd); err != nil {
		return fmt.Errorf("failed to change back to original directory: %v", err)
	}

	// Clean up temp directory
	if err := os.RemoveAll(tempDir); err != nil {
		log.Printf("Warning: failed to remove temp directory: %v", err)
	}

	return nil
}
