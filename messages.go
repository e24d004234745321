package webzip

import (
	"fmt"
	"strings"
)

func usageMessage(command string) string {
	return "🌐 **WebZIP - Website Archiver**\n\n" +
		"Please provide a website URL.\n\n" +
		"Example: " + command + " https://example.com\n\n" +
		"✨ **Features:**\n" +
		"• Full page archives\n" +
		"• Single HTML files\n" +
		"• PDF conversions\n" +
		"• Screenshots"
}

func invalidURLMessage() string {
	return "❌ Invalid URL format.\n\n" +
		"Please provide a valid URL starting with http:// or https://"
}

func processingMessage(req *Request) string {
	return fmt.Sprintf("⏳ **Processing Website Archive**\n\n🌐 %s\n\n🔄 Checking archiving services...", req.RawURL)
}

func methodStatusMessage(index, total int, method Method) string {
	return fmt.Sprintf("⏳ **Method %d/%d:** %s\n\n%s", index, total, method.Name(), method.Description())
}

func pdfCaption(botName string, req *Request, result *Result) string {
	return fmt.Sprintf("📄 **Website PDF Export**\n\n🌐 %s\n📁 Format: PDF\n📦 %s\n\n"+
		"✨ **Exported by %s**\n⚠️ Some interactive elements may be lost",
		req.RawURL, formatSize(len(result.Data)), botName)
}

func htmlCaption(botName string, req *Request, result *Result) string {
	var sb strings.Builder
	sb.WriteString("📄 **Webpage HTML**\n\n")
	if result.Title != "" {
		fmt.Fprintf(&sb, "📰 %s\n", result.Title)
	}
	fmt.Fprintf(&sb, "🌐 %s\n📁 Raw HTML\n📦 %s\n\n", req.RawURL, formatSize(len(result.Data)))
	sb.WriteString("⚠️ **Note:** External resources are not included.\n")
	fmt.Fprintf(&sb, "✨ **Downloaded by %s**", botName)
	return sb.String()
}

func screenshotCaption(botName string, req *Request, result *Result) string {
	return fmt.Sprintf("📸 **Website Screenshot**\n\n🌐 %s\n📁 Visual archive\n📦 %s\n\n"+
		"✨ **Captured by %s**\n⚠️ Dynamic content may not be captured",
		req.RawURL, formatSize(len(result.Data)), botName)
}

func snapshotReadyMessage(req *Request, result *Result) string {
	return fmt.Sprintf("✅ **Website Archive Complete**\n\n🌐 %s\n📁 Format: Self-contained HTML\n⚡ Method: %s\n\n"+
		"⏳ **Downloading archive file...**", req.RawURL, result.Method)
}

func snapshotCaption(botName string, req *Request, data []byte) string {
	return fmt.Sprintf("📦 **Complete Website Archive**\n\n🌐 %s\n📁 SingleFile HTML\n📦 %s\n⚡ All assets embedded\n\n"+
		"✨ **Archived by %s**\n💡 Open in browser to view perfectly",
		req.RawURL, formatSize(len(data)), botName)
}

func snapshotLinkMessage(req *Request, result *Result) string {
	return fmt.Sprintf("📦 **Archive Ready**\n\n🌐 %s\n⚡ Method: %s\n📦 Size: %s\n\n"+
		"🔗 **Direct Download Link:**\n%s\n\n💡 **Copy this link to download the archive file.**",
		req.RawURL, result.Method, result.Size, result.Link)
}

func failureMessage(req *Request) string {
	return fmt.Sprintf("❌ **Archiving Failed**\n\n🌐 %s\n\n"+
		"🔧 **All methods failed. Possible reasons:**\n"+
		"• Website blocks archiving\n"+
		"• Requires JavaScript/Login\n"+
		"• Server timeout\n"+
		"• Service limits\n\n"+
		"💡 **Manual alternatives:**\n"+
		"1. https://web.archive.org/save/%s\n"+
		"2. Browser: Ctrl+S or File > Save Page\n"+
		"3. Extension: \"SingleFile\" for Chrome/Firefox",
		req.RawURL, req.RawURL)
}

func unexpectedErrorMessage(err error) string {
	return fmt.Sprintf("❌ **Unexpected Error**\n\nError: %s\n\n💡 Try again or use a different website.", err.Error())
}
