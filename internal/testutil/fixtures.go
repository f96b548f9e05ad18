package testutil

import "github.com/satinau/seoshell/content"

// SamplePosts returns a small index with an ASCII title, a CJK title and a
// post whose filename carries no extension.
func SamplePosts() []content.Post {
	return []content.Post{
		{Title: "Hello World", Date: "2025-01-02", File: "hello-world.md"},
		{Title: "你好 世界", Date: "2025-02-03", File: "你好世界.md"},
		{Title: "Notes on Go", Date: "", File: "go-notes"},
	}
}

// SampleFiles returns Markdown bodies for SamplePosts.
func SampleFiles() map[string]string {
	return map[string]string{
		"hello-world.md": "---\ntitle: Hello World\ndescription: A first post\n---\n# Hello\n\nSome **bold** text and ![cat](img/cat.png).\n\n[next](other.md)\n",
		"你好世界.md":        "# 你好\n\n这是第一篇文章。\n",
		"go-notes":       "## Notes\n\n- one\n- two\n\n> quoted\n",
	}
}

// Shell is a minimal client-rendered blog shell with every element the SEO
// rewriter addresses, plus a script that must survive untouched.
const Shell = `<!DOCTYPE html>
<html lang="zh">
<head>
  <meta charset="UTF-8" />
  <title>Blog - SatinAu</title>
  <meta name="description" content="Blog of SatinAu">
  <link rel="canonical" href="https://satinau.cn/blog">
  <script>if (a < b && c > d) { console.log("</div>"); }</script>
  <style>#blogList > div { color: red; }</style>
</head>
<body>
  <main class="page">
    <div id="blogList"><p>Loading...</p></div>
    <article id="postView" class="md-article" style="display:none">
      <h2 id="postTitle"></h2>
      <p id="postDate"></p>
      <div id="postContent"><div class="skeleton"></div></div>
    </article>
  </main>
  <!-- footer -->
</body>
</html>
`
