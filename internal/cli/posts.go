package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var postsCmd = &cobra.Command{
	Use:     "posts",
	Aliases: []string{"feed"},
	Short:   "Browse the forum feed",
	Long: `Browse the forum feed, newest post first.

Examples:
  forum posts
  forum posts --limit 5
  forum posts new`,
	RunE: runPosts,
}

var newPostCmd = &cobra.Command{
	Use:   "new",
	Short: "Publish a new post (requires login)",
	RunE:  runNewPost,
}

var postsLimit int

func init() {
	postsCmd.Flags().IntVarP(&postsLimit, "limit", "n", 0, "Show at most N posts")
	postsCmd.AddCommand(newPostCmd)
}

func runPosts(cmd *cobra.Command, args []string) error {
	client, _, err := newSession()
	if err != nil {
		return err
	}

	posts, err := client.ListPosts(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to fetch posts: %w", err)
	}

	if len(posts) == 0 {
		fmt.Println("No posts yet. Publish one with: forum posts new")
		return nil
	}

	if postsLimit > 0 && len(posts) > postsLimit {
		posts = posts[:postsLimit]
	}

	for _, p := range posts {
		fmt.Printf("\n📝 %s\n", p.Title)
		fmt.Printf("   by %s on %s\n", p.Author.Username, p.CreatedAt.Format("Jan 2 15:04"))
		fmt.Println(strings.Repeat("─", 60))
		fmt.Println(indent(p.Content, "   "))
	}
	fmt.Println()
	return nil
}

func runNewPost(cmd *cobra.Command, args []string) error {
	client, mgr, err := newSession()
	if err != nil {
		return err
	}

	mgr.Bootstrap(cmd.Context())
	if !mgr.Snapshot().Authenticated() {
		return fmt.Errorf("not logged in; run: forum auth login")
	}

	reader := bufio.NewReader(os.Stdin)

	fmt.Print("Title: ")
	title, _ := reader.ReadString('\n')
	title = strings.TrimSpace(title)
	if title == "" {
		return fmt.Errorf("title is required")
	}

	fmt.Print("Content: ")
	content, _ := reader.ReadString('\n')
	content = strings.TrimSpace(content)
	if content == "" {
		return fmt.Errorf("content is required")
	}

	fmt.Println("🔄 Publishing...")
	post, err := client.CreatePost(cmd.Context(), title, content)
	if err != nil {
		return fmt.Errorf("failed to publish post: %w", err)
	}

	fmt.Printf("✅ Published %q as %s\n", post.Title, post.Author.Username)
	return nil
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}
