// Package response holds the fixed replies of the confirmation flows.
package response

import (
	"fmt"
	"strings"
)

func AskPreview(fileName string) string {
	return fmt.Sprintf("Do you want me to generate a preview for '%s' before creating it?", fileName)
}

func ShowPreview(fileName, preview string) string {
	return fmt.Sprintf("Here is a preview for '%s':\n\n%s\n\nShall I create the document?", fileName, preview)
}

func DocumentCreated(fileName string) string {
	return fmt.Sprintf("Document '%s' created!", fileName)
}

func CreateCanceled() string {
	return "Okay, I won't create the document."
}

func AskMoveSource() string {
	return "Which file would you like to move?"
}

func AskMoveTarget(source string) string {
	return fmt.Sprintf("Found '%s'. Which folder should I move it to?", source)
}

func TargetNotFolder(name string) string {
	return fmt.Sprintf("'%s' is not a folder. Please name a folder to move the file into.", name)
}

func TargetNotFound(name string) string {
	return fmt.Sprintf("I couldn't find a folder called '%s'. Please try another name.", name)
}

func ConfirmMove(source, target string) string {
	return fmt.Sprintf("Move '%s' to '%s'?", source, target)
}

func Moved(source, target string) string {
	return fmt.Sprintf("Moved '%s' to '%s'.", source, target)
}

func MoveCanceled() string {
	return "Okay, the file stays where it is."
}

func AlreadyInFolder(source, target string) string {
	return fmt.Sprintf("'%s' is already in '%s'.", source, target)
}

// Ambiguous lists the candidate paths so the user can answer with one of them.
func Ambiguous(name string, paths []string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "I found several items named '%s':\n", name)
	for _, p := range paths {
		fmt.Fprintf(&sb, "- %s\n", p)
	}
	sb.WriteString("Please reply with the full path of the one you mean.")
	return sb.String()
}

func RewriteSaved(name string) string {
	return fmt.Sprintf("I've updated '%s' with the new content.", name)
}

func RewriteUnsupported(name string) string {
	return fmt.Sprintf("I can only rewrite Google Docs, and '%s' is not one. Here is the suggested text instead.", name)
}

func IndexNotReady() string {
	return "I'm still reading your Drive. Please try again in a moment."
}
