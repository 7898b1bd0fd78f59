package tryon

import "strings"

// BuildPrompt renders the garment-replacement instruction sent alongside the
// image pair. The wording keeps the person's identity and scene fixed and
// only swaps the targeted garment category.
func BuildPrompt(category, extra string) string {
	subject := strings.TrimSpace(category)
	if subject == "" {
		subject = "clothes"
	}
	var b strings.Builder
	b.WriteString("Replace the person's current " + subject + " with the garment shown in the second image. ")
	b.WriteString("Preserve the person's identity, face, hairstyle, skin tone, body shape, pose and background. ")
	b.WriteString("Make the fit realistic and natural with correct lighting and fabric drape. Keep hands and accessories intact. ")
	b.WriteString("Avoid changing facial features.")
	if extra = strings.TrimSpace(extra); extra != "" {
		b.WriteString("\nExtra style guidance: " + extra)
	}
	return b.String()
}
