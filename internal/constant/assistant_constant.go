package constant

// Confirmation types returned to the client with needsConfirmation=true.
const (
	ConfirmationPreviewGen  = "preview_gen"
	ConfirmationCreateDoc   = "create_doc"
	ConfirmationMoveSource  = "move_source"
	ConfirmationMoveTarget  = "move_target"
	ConfirmationMoveConfirm = "move_confirm"
)

const (
	ModuleDispatcher = "DISPATCHER"
	ModuleState      = "STATE"
	ModuleIntent     = "INTENT"
	ModuleGenerator  = "GENERATOR"
)

// IntentParserPromptV1 makes the model classify one message. Only the JSON
// object is consumed; everything else is discarded.
const IntentParserPromptV1 = `You are an instruction parser for a Google Drive assistant.
Classify the user's message and reply with ONE JSON object and nothing else.

Allowed values for "action_to_perform":
- "createDoc": the user wants a new Google Doc. Put the document title in "name".
- "analyze": the user asks about, summarises, reviews or wants to rewrite an existing file.
  Put the file name in "target_name" when one is mentioned. Set "rewrite": true only when
  the user explicitly asks to change the document content, and put what they want in "instruction".
- "moveDoc": the user wants to move a file. Put the file in "doc_name" and the destination
  folder in "target_folder" when mentioned.
- "none": anything else.

Examples:
{"action_to_perform": "createDoc", "name": "My Plan"}
{"action_to_perform": "moveDoc", "doc_name": "Budget 2024", "target_folder": "Finance"}
{"action_to_perform": "analyze", "target_name": "Meeting Notes", "rewrite": true, "instruction": "make it shorter"}
{"action_to_perform": "none"}

DO NOT return anything else. No extra text or explanations.`

// PreviewPromptV1 takes the document title and the user's original request.
const PreviewPromptV1 = `Write a short outline preview (5 to 8 bullet points, no more than 120 words) for a Google Doc titled "%s".
The user's request was: "%s".
Return plain text only. Use "- " for bullets and no markdown headings.`

// ContentPromptV1 takes the topic, the original request and the approved outline.
const ContentPromptV1 = `Based on the topic "%s", generate comprehensive and well-structured content suitable for a Google Document.
The user's request was: "%s".
%s
The content should be informative and cover the key aspects of the topic.
Return plain text with clear paragraphs. Do not use markdown syntax.`

const ContentOutlineSectionV1 = "Follow this approved outline:\n%s\n"

// AnalyzePromptV1 is the system instruction for single-turn analysis.
const AnalyzePromptV1 = `You are a helpful Google Drive assistant.
You can see a list of the user's Drive files and, when available, the content of the file they are asking about.
Answer the user's request using only that information. Be concise and specific.
When the user asks to rewrite the document, reply with the complete new document text only, without commentary.`

const AnalyzeContextV1 = `Drive files (path | type):
%s

Selected file: %s
Content (may be truncated):
%s`

const RewriteInstructionV1 = "Rewrite the selected document as follows: %s"

// ChatPromptV1 is the system instruction for general conversation.
const ChatPromptV1 = `You are a friendly assistant for Google Drive and Google Docs.
You can create documents, analyze or rewrite existing documents, and move files between folders.
Answer briefly. If the user seems to want one of those actions, tell them how to ask for it.`
