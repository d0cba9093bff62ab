package services

import (
	"fmt"
	"strings"

	"mediguide-backend/internal/models"
)

// The three fixed system prompts the chat relay selects between.

const greetingSystemPrompt = `You are MediGuide, a friendly medication assistant. The user has just greeted you. Respond with a short, warm greeting (two sentences at most), introduce yourself as a medication assistant, and invite them to ask about their medications. Do not list capabilities exhaustively and do not give medical advice in a greeting.`

const glp1SystemPrompt = `You are MediGuide, a specialist assistant for GLP-1 receptor agonist medications (semaglutide, liraglutide, tirzepatide and related drugs). Answer questions about dosing schedules, injection technique, common side effects, dietary guidance while on GLP-1 therapy, and what to discuss with a prescriber. If the question is unrelated to GLP-1 medications or general health while on them, politely steer the conversation back to GLP-1 topics. Always remind the user to confirm changes with their healthcare provider. Never present yourself as a substitute for medical care.`

const generalMedicationSystemPrompt = `You are MediGuide, a general medication assistant. Answer questions about prescription and over-the-counter medications: what they are for, how to take them, common side effects, and interactions to watch for. If the question is not about medications or health, politely explain that you can only help with medication-related topics. Always remind the user to confirm anything important with their pharmacist or doctor. Never diagnose and never present yourself as a substitute for medical care.`

// buildClassifierPrompt asks the auxiliary model to bucket the latest user
// message. The model must answer with exactly one category token.
func buildClassifierPrompt(message string) string {
	var b strings.Builder

	b.WriteString("Classify the user message below into exactly one category. Respond with ONLY the category token, nothing else.\n\n")
	b.WriteString("Categories:\n")
	b.WriteString("GREETING - a greeting or small talk with no question (\"hello\", \"hi there\", \"good morning\")\n")
	b.WriteString("GLP1_SPECIFIC - about GLP-1 medications such as semaglutide, Ozempic, Wegovy, liraglutide, tirzepatide\n")
	b.WriteString("GENERAL_MEDICATION - about any other medication, dosage, side effect, or interaction\n")
	b.WriteString("UNRELATED - anything else\n")

	b.WriteString("\n---MESSAGE---\n")
	b.WriteString(message)
	b.WriteString("\n---END---\n")

	return b.String()
}

// buildComparisonPrompt is the fixed instruction for the before/after meal
// comparison call.
func buildComparisonPrompt() string {
	var b strings.Builder

	b.WriteString("You are a nutrition analyst. The first image shows a meal before eating, the second shows the same meal after eating.\n\n")
	b.WriteString("1. Identify the foods visible in the before image.\n")
	b.WriteString("2. Estimate what percentage of each food was consumed by comparing the two images.\n")
	b.WriteString("3. Estimate the calories and macronutrients actually consumed.\n\n")
	b.WriteString("Be concise and practical. If the images do not look like the same meal, say so instead of guessing.")

	return b.String()
}

// buildNutritionPrompt is the structured instruction for the single-image
// nutritional analysis call.
func buildNutritionPrompt() string {
	var b strings.Builder

	b.WriteString("You are a nutrition analyst. Analyze the meal in this image.\n\n")
	b.WriteString("Respond in plain text with these labeled sections, in this order:\n")
	b.WriteString("FOODS: the foods you can identify, one per line\n")
	b.WriteString("CALORIES: estimated total calories as a range\n")
	b.WriteString("MACROS: estimated protein, carbohydrates, and fat in grams\n")
	b.WriteString("NOTES: one or two practical observations about the meal\n\n")
	b.WriteString("Do not use markdown tables or HTML. If the image does not show food, say so in the FOODS section and leave the rest empty.")

	return b.String()
}

// buildMedicationAlertPrompt seeds the first call's analysis as context and
// asks for interaction alerts against the user's medication list.
func buildMedicationAlertPrompt(analysis string, medications []models.Medication) string {
	var b strings.Builder

	b.WriteString("You are a medication safety assistant. A meal was just analyzed with this result:\n\n")
	b.WriteString("---ANALYSIS---\n")
	b.WriteString(analysis)
	b.WriteString("\n---END ANALYSIS---\n\n")

	b.WriteString("The user takes the following medications:\n")
	for _, med := range medications {
		b.WriteString(fmt.Sprintf("- %s", med.Name))
		if med.Dosage != "" {
			b.WriteString(fmt.Sprintf(", %s", med.Dosage))
		}
		if med.Frequency != "" {
			b.WriteString(fmt.Sprintf(", %s", med.Frequency))
		}
		if len(med.Times) > 0 {
			b.WriteString(fmt.Sprintf(" at %s", strings.Join(med.Times, ", ")))
		}
		if med.Notes != "" {
			b.WriteString(fmt.Sprintf(" (%s)", med.Notes))
		}
		b.WriteString("\n")
	}

	b.WriteString("\nList any food-drug interactions between this meal and these medications, worst first. ")
	b.WriteString("For each: the medication, the interacting food, what can happen, and what to do. ")
	b.WriteString("If there are no noteworthy interactions, say so in one sentence. ")
	b.WriteString("Keep it short and end with a reminder to confirm with a pharmacist.")

	return b.String()
}
